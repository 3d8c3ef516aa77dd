package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/worldsave/internal/config"
	"github.com/zeusync/worldsave/internal/core/observability/log"
)

type backend struct {
	name string
	open func(t *testing.T) SnapshotStore
}

func backends() []backend {
	return []backend{
		{"file", func(t *testing.T) SnapshotStore {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "snaps"))
			require.NoError(t, err)
			return s
		}},
		{"redis", func(t *testing.T) SnapshotStore {
			srv := miniredis.RunT(t)
			s, err := NewRedisStore(context.Background(), RedisOptions{Addr: srv.Addr()}, "test")
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) SnapshotStore {
			s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "worlds.db"))
			require.NoError(t, err)
			return s
		}},
	}
}

func TestSnapshotStoreContract(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()

			list, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)

			require.NoError(t, s.Put(ctx, "beta", []byte{1, 2, 3}))
			require.NoError(t, s.Put(ctx, "alpha", []byte("first")))
			require.NoError(t, s.Put(ctx, "alpha", []byte("second")))

			data, err := s.Get(ctx, "alpha")
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), data)

			list, err = s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "alpha", list[0].Name)
			assert.Equal(t, int64(6), list[0].Size)
			assert.False(t, list[0].UpdatedAt.IsZero())
			assert.Equal(t, "beta", list[1].Name)
			assert.Equal(t, int64(3), list[1].Size)

			require.NoError(t, s.Delete(ctx, "beta"))
			_, err = s.Get(ctx, "beta")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, s.Put(ctx, "../escape", nil), ErrInvalidName)
			_, err = s.Get(ctx, "")
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"world", "save-01", "slot_2.autosave"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", ".hidden", "a/b", `a\b`, "a:b", string(make([]byte, maxNameLen+1))} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}

func TestRedisKeyLayout(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	s := NewRedisStoreFromClient(client, "shard-a")
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), "world", []byte("payload")))
	assert.True(t, srv.Exists("WSNAP:shard-a:world"))
	assert.Equal(t, "payload", srv.HGet("WSNAP:shard-a:world", "data"))
	assert.Equal(t, "7", srv.HGet("WSNAP:shard-a:world", "size"))

	// keys of another prefix are invisible
	srv.HSet("WSNAP:shard-b:other", "data", "x", "size", "1", "updated_ms", "0")
	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "world", list[0].Name)
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "world", []byte("x")))
	require.NoError(t, writeRaw(filepath.Join(dir, "notes.txt")))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "world", list[0].Name)

	require.NoError(t, s.Close())
	_, err = s.Get(context.Background(), "world")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default().Store
	cfg.File.Dir = t.TempDir()

	s, err := Open(ctx, cfg, log.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	srv := miniredis.RunT(t)
	cfg.Backend = config.BackendRedis
	cfg.Redis.Addr = srv.Addr()
	s, err = Open(ctx, cfg, log.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	cfg.Backend = config.BackendSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "w.db")
	s, err = Open(ctx, cfg, log.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	cfg.Backend = "tape"
	_, err = Open(ctx, cfg, log.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func writeRaw(path string) error {
	return os.WriteFile(path, []byte("not a snapshot"), 0o600)
}

func TestRedisListSkipsNestedPrefixes(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	outer := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}), "a")
	defer outer.Close()
	nested := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}), "a:b")
	defer nested.Close()

	require.NoError(t, outer.Put(ctx, "world", []byte("1")))
	require.NoError(t, nested.Put(ctx, "x", []byte("2")))

	list, err := outer.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "world", list[0].Name)
}
