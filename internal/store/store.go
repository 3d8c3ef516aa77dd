// Package store keeps encoded world snapshots under a name in a file
// directory, a redis server or a sqlite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeusync/worldsave/internal/config"
	"github.com/zeusync/worldsave/internal/core/observability/log"
)

var (
	ErrNotFound    = errors.New("snapshot not found")
	ErrInvalidName = errors.New("invalid snapshot name")
	ErrClosed      = errors.New("snapshot store closed")
)

const maxNameLen = 200

// Info describes a stored snapshot without loading it.
type Info struct {
	Name      string
	Size      int64
	UpdatedAt time.Time
}

// SnapshotStore is implemented by every backend. Put replaces an existing
// snapshot of the same name. Get and Delete return ErrNotFound for unknown
// names. List is ordered by name.
type SnapshotStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Info, error)
	Close() error
}

// Open returns the backend selected by cfg.
func Open(ctx context.Context, cfg config.Store, logger log.Log) (SnapshotStore, error) {
	var (
		s   SnapshotStore
		err error
	)
	switch cfg.Backend {
	case config.BackendFile:
		s, err = NewFileStore(cfg.File.Dir)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Prefix)
	case config.BackendSQLite:
		s, err = NewSQLiteStore(ctx, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("snapshot store opened", log.String("backend", cfg.Backend))
	return s, nil
}

// ValidateName rejects names that could escape a directory or a key prefix.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > maxNameLen:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, maxNameLen)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\:*?\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
