// Package sqlite is the ReportStore adapter for single-node and local runs. It reads the
// same schema as the Postgres adapter.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type DB struct {
	X *sqlx.DB
}

// Open connects to dsn, e.g. "file:reports.db?_foreign_keys=on&_journal_mode=WAL".
func Open(ctx context.Context, dsn string) (*DB, error) {
	x, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// WAL allows concurrent readers; writes only happen during migration
	x.SetMaxOpenConns(4)
	x.SetMaxIdleConns(4)
	x.SetConnMaxLifetime(0)
	if err := x.PingContext(ctx); err != nil {
		_ = x.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}
	return &DB{X: x}, nil
}

func (db *DB) Ping(ctx context.Context) error { return db.X.PingContext(ctx) }

func (db *DB) Close() error { return db.X.Close() }

func (db *DB) Migrate(ctx context.Context, logger *slog.Logger) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db.X.DB, migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, r := range results {
		logger.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}
