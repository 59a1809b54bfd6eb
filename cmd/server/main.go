package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	httpadapter "reportctx/internal/adapters/http"
	pg "reportctx/internal/adapters/postgres"
	"reportctx/internal/adapters/sqlite"
	"reportctx/internal/config"
	"reportctx/internal/logo"
	"reportctx/internal/metrics"
	"reportctx/internal/ports"
	"reportctx/internal/richtext"
	"reportctx/internal/services/reportcontext"
)

// store is what the server needs from either relational adapter.
type store interface {
	ports.ReportStore
	httpadapter.Pinger
	Migrate(ctx context.Context, logger *slog.Logger) error
}

func main() {
	cfg, err := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("db connect error", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer closeDB()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, logger); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	m := metrics.New()
	builder := reportcontext.New(db, richtext.New(), logo.New(cfg.LogoFetchTimeout, logger), reportcontext.Options{
		BaseOrigin:    cfg.BackendURL,
		RenderWorkers: cfg.RenderWorkers,
		Logger:        logger,
		Observer:      m,
	})

	srv := httpadapter.New(builder, db, m.Handler(), logger)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	logger.Info("listening", "addr", cfg.ListenAddr, "driver", cfg.DatabaseDriver, "env", cfg.Env)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", fmt.Errorf("listen: %w", err))
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Development() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func openStore(ctx context.Context, cfg config.Config) (store, func(), error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		db, err := pg.Connect(ctx, cfg.DatabaseURL, pg.PoolOptions{
			MaxConns: int32(cfg.DBMaxConns),
			MinConns: int32(cfg.DBMinConns),
		})
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
}
