package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"APP_ENV", "LISTEN_ADDR", "DATABASE_DRIVER", "DATABASE_URL", "MIGRATE_ON_START",
		"BACKEND_URL", "LOGO_FETCH_TIMEOUT", "RENDER_WORKERS", "LOG_LEVEL", "DB_MAX_CONNS", "DB_MIN_CONNS"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/reports")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.Development())
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.LogoFetchTimeout)
	assert.Equal(t, 4, cfg.RenderWorkers)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 1, cfg.DBMinConns)
}

func TestLoadPoolSizing(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://db/reports")
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("DB_MIN_CONNS", "4")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.DBMaxConns)
	assert.Equal(t, 4, cfg.DBMinConns)

	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "6")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.DBMaxConns)
	assert.Equal(t, 2, cfg.DBMinConns)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://db/reports")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("BACKEND_URL", "https://api.example.com")
	t.Setenv("LOGO_FETCH_TIMEOUT", "750ms")
	t.Setenv("RENDER_WORKERS", "8")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Development())
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "https://api.example.com", cfg.BackendURL)
	assert.Equal(t, 750*time.Millisecond, cfg.LogoFetchTimeout)
	assert.Equal(t, 8, cfg.RenderWorkers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadSQLiteDefaultsURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "SQLite3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Contains(t, cfg.DatabaseURL, "reports.db")
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL not set")

	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err = Load()
	assert.ErrorContains(t, err, "unsupported DATABASE_DRIVER")
}

func TestMalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "x")
	t.Setenv("LOGO_FETCH_TIMEOUT", "soon")
	t.Setenv("RENDER_WORKERS", "many")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("MIGRATE_ON_START", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.LogoFetchTimeout)
	assert.Equal(t, 4, cfg.RenderWorkers)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.MigrateOnStart)

	t.Setenv("LOGO_FETCH_TIMEOUT", "2.5")
	t.Setenv("RENDER_WORKERS", "0")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.LogoFetchTimeout)
	assert.Equal(t, 1, cfg.RenderWorkers)
}
