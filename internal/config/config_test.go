package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DATABASE_DRIVER", "DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "AUTO_MIGRATE", "LOG_LEVEL", "LOG_FORMAT",
	"CORS_ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
port: 9090
database:
  driver: sqlite
  url: file:issues.db
  conn_max_lifetime: 1m
log:
  level: debug
  format: json
cors_allowed_origins:
  - https://example.com
shutdown_timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:issues.db", cfg.Database.URL)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns, "unset keys keep their default")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "port: 9090\ndatabase:\n  driver: sqlite\n  url: file:a.db\n")
	t.Setenv("PORT", "7070")
	t.Setenv("DATABASE_URL", "file:b.db")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:b.db", cfg.Database.URL)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad port":      {"PORT": "eighty"},
		"port range":    {"PORT": "70000"},
		"bad driver":    {"DATABASE_DRIVER": "mysql"},
		"bad duration":  {"SHUTDOWN_TIMEOUT": "soon"},
		"bad bool":      {"AUTO_MIGRATE": "perhaps"},
		"bad log level": {"LOG_LEVEL": "loud"},
		"bad format":    {"LOG_FORMAT": "xml"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")
}
