// Package config loads worldsave settings from defaults, an optional YAML file
// and WORLDSAVE_ environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/worldsave/internal/core/observability/log"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WORLDSAVE_"

// Store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// Verbose is the default save mode for tools that do not pass one.
	Verbose bool  `yaml:"verbose" env:"VERBOSE"`
	Store   Store `yaml:"store" envPrefix:"STORE_"`
}

type Store struct {
	Backend string      `yaml:"backend" env:"BACKEND"`
	File    FileStore   `yaml:"file" envPrefix:"FILE_"`
	Redis   RedisStore  `yaml:"redis" envPrefix:"REDIS_"`
	SQLite  SQLiteStore `yaml:"sqlite" envPrefix:"SQLITE_"`
}

type FileStore struct {
	Dir string `yaml:"dir" env:"DIR"`
}

type RedisStore struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	// Prefix namespaces keys so that several worlds can share one server.
	Prefix string `yaml:"prefix" env:"PREFIX"`
}

type SQLiteStore struct {
	Path string `yaml:"path" env:"PATH"`
}

// Default returns a file-backed config writing under ./snapshots.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Store: Store{
			Backend: BackendFile,
			File:    FileStore{Dir: "snapshots"},
			Redis:   RedisStore{Addr: "localhost:6379", Prefix: "default"},
			SQLite:  SQLiteStore{Path: "worldsave.db"},
		},
	}
}

// Load builds a config. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err = decodeYAML(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.File.Dir == "" {
			return fmt.Errorf("%w: store.file.dir is required", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr is required", ErrInvalidConfig)
		}
		if strings.Contains(c.Store.Redis.Prefix, ":") {
			return fmt.Errorf("%w: store.redis.prefix must not contain ':'", ErrInvalidConfig)
		}
		if c.Store.Redis.DB < 0 {
			return fmt.Errorf("%w: store.redis.db must not be negative", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("%w: store.sqlite.path is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() log.Level {
	return log.ParseLevel(c.LogLevel)
}
