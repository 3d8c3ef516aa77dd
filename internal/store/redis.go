package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const (
	keyPrefix   = "WSNAP"
	fieldData   = "data"
	fieldSize   = "size"
	fieldUpdate = "updated_ms"
	scanBatch   = 100
)

type RedisOptions = redis.Options

// RedisStore keeps each snapshot in a hash at WSNAP:<prefix>:<name> holding
// the payload, its size and the last update time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ SnapshotStore = (*RedisStore)(nil)

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, options RedisOptions, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "ping redis at %s", options.Addr)
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. Close closes the client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "default"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, s.prefix, name)
}

func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := s.client.HSet(ctx, s.key(name),
		fieldData, data,
		fieldSize, len(data),
		fieldUpdate, time.Now().UTC().UnixMilli(),
	).Err()
	if err != nil {
		return s.wrap(err, "put snapshot %s", name)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := s.client.HGet(ctx, s.key(name), fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, s.wrap(err, "get snapshot %s", name)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.key(name)).Result()
	if err != nil {
		return s.wrap(err, "delete snapshot %s", name)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	match := s.key("*")
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return nil, s.wrap(err, "scan %s", match)
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	head := s.key("")
	out := make([]Info, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, head)
		// belongs to a longer prefix such as <prefix>:shard
		if strings.Contains(name, ":") {
			continue
		}
		vals, err := s.client.HMGet(ctx, key, fieldSize, fieldUpdate).Result()
		if err != nil {
			return nil, s.wrap(err, "read metadata of %s", key)
		}
		// deleted between SCAN and HMGET
		if vals[0] == nil {
			continue
		}
		out = append(out, Info{
			Name:      name,
			Size:      parseInt(vals[0]),
			UpdatedAt: time.UnixMilli(parseInt(vals[1])).UTC(),
		})
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return eris.Wrap(err, "close redis client")
	}
	return nil
}

func (s *RedisStore) wrap(err error, format string, args ...any) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	return eris.Wrapf(err, format, args...)
}

func parseInt(v any) int64 {
	str, _ := v.(string)
	n, _ := strconv.ParseInt(str, 10, 64)
	return n
}
