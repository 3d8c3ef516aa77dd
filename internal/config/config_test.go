package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/core/observability/log"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worldsave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, log.LevelInfo, cfg.Level())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, `
log_level: debug
verbose: true
store:
  backend: redis
  redis:
    addr: 10.0.0.5:6379
    db: 2
    prefix: shard-a
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, log.LevelDebug, cfg.Level())
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "10.0.0.5:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "shard-a", cfg.Store.Redis.Prefix)
	// untouched sections keep their defaults
	assert.Equal(t, "snapshots", cfg.Store.File.Dir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "store:\n  backend: file\n  file:\n    dir: /var/lib/worlds\n")
	t.Setenv("WORLDSAVE_STORE_BACKEND", "sqlite")
	t.Setenv("WORLDSAVE_STORE_SQLITE_PATH", "/tmp/worlds.db")
	t.Setenv("WORLDSAVE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/worlds.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "/var/lib/worlds", cfg.Store.File.Dir)
	assert.Equal(t, log.LevelWarn, cfg.Level())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeFile(t, "stroe:\n  backend: file\n"))
		assert.Error(t, err)
	})
	t.Run("bad env", func(t *testing.T) {
		t.Setenv("WORLDSAVE_STORE_REDIS_DB", "zero")
		_, err := Load("")
		assert.ErrorContains(t, err, "parse env")
	})
	t.Run("invalid", func(t *testing.T) {
		t.Setenv("WORLDSAVE_STORE_BACKEND", "s3")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"log level":   func(c *Config) { c.LogLevel = "loud" },
		"file dir":    func(c *Config) { c.Store.File.Dir = "" },
		"redis addr":  func(c *Config) { c.Store.Backend = BackendRedis; c.Store.Redis.Addr = "" },
		"redis db":    func(c *Config) { c.Store.Backend = BackendRedis; c.Store.Redis.DB = -1 },
		"redis colon": func(c *Config) { c.Store.Backend = BackendRedis; c.Store.Redis.Prefix = "a:b" },
		"sqlite path": func(c *Config) { c.Store.Backend = BackendSQLite; c.Store.SQLite.Path = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
	assert.NoError(t, Default().Validate())
}
