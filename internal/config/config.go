package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env              string
	ListenAddr       string
	DatabaseDriver   string // postgres or sqlite
	DatabaseURL      string
	DBMaxConns       int // Postgres pool size
	DBMinConns       int
	MigrateOnStart   bool
	BackendURL       string // origin that relative evidence paths are joined onto
	LogoFetchTimeout time.Duration
	RenderWorkers    int
	LogLevel         slog.Level
}

func (c Config) Development() bool { return c.Env == "development" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:              getenv("APP_ENV", "development"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		DatabaseDriver:   strings.ToLower(getenv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       getenvInt("DB_MAX_CONNS", 10),
		DBMinConns:       getenvInt("DB_MIN_CONNS", 1),
		MigrateOnStart:   getenvBool("MIGRATE_ON_START", false),
		BackendURL:       getenv("BACKEND_URL", "http://localhost:8000"),
		LogoFetchTimeout: getenvDuration("LOGO_FETCH_TIMEOUT", 5*time.Second),
		RenderWorkers:    getenvInt("RENDER_WORKERS", 4),
		LogLevel:         getenvLevel("LOG_LEVEL", slog.LevelInfo),
	}
	switch cfg.DatabaseDriver {
	case "postgres":
	case "sqlite", "sqlite3":
		cfg.DatabaseDriver = "sqlite"
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "file:reports.db?_foreign_keys=on&_journal_mode=WAL"
		}
	default:
		return cfg, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.DBMaxConns < 1 {
		cfg.DBMaxConns = 1
	}
	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		cfg.DBMinConns = min(max(cfg.DBMinConns, 0), cfg.DBMaxConns)
	}
	if cfg.RenderWorkers < 1 {
		cfg.RenderWorkers = 1
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return out
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return out
		}
	}
	return def
}

// getenvDuration accepts Go durations ("750ms", "5s") or a bare number of seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

func getenvLevel(key string, def slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
		return def
	}
	return lvl
}
