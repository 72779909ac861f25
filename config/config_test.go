package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollex.nl/bookshop/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookshop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite3, cfg.Database.Driver)
	assert.Equal(t, "bookshop.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.UndatedSkip, cfg.UndatedPolicy)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetimeDuration())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  path: /tmp/shop.db
log_level: debug
undated_policy: reject
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/shop.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns, "missing values fall back to defaults")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.UndatedReject, cfg.UndatedPolicy)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  path: file.db\n")
	t.Setenv("BOOKSHOP_DB_PATH", "env.db")
	t.Setenv("BOOKSHOP_DB_MAX_OPEN_CONNS", "4")
	t.Setenv("BOOKSHOP_DB_MAX_IDLE_CONNS", "not a number")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.Equal(t, 1, cfg.Database.MaxIdleConns, "unparsable numbers are ignored")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
log_level: loud
undated_policy: guess
`)

	_, err := config.Load(path)
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "postgres")
	assert.Contains(t, err.Error(), "loud")
	assert.Contains(t, err.Error(), "guess")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	level, err := config.ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = config.ParseLevel("chatty")
	assert.ErrorIs(t, err, config.ErrInvalid)
}
