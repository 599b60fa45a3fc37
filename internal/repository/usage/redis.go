package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Plaidmustache/mcp-omnisearch/internal/db"
)

// kvStore is the consumer interface for Redis usage operations (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// RedisStore implements Store on top of the KV facade. Increments use the
// store's native atomic INCRBY, so concurrent writers are race-free. Store
// errors propagate unmodified; there is no per-call fallback to the file
// backend.
type RedisStore struct {
	kv     kvStore
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed usage store. All keys live under the
// given namespace prefix.
func NewRedisStore(kv kvStore, prefix string) *RedisStore {
	return &RedisStore{kv: kv, prefix: prefix}
}

// Get returns the counter value, 0 if the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.kv.Get(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

// Increment atomically adds one to the counter and returns the new value.
func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	n, err := s.kv.IncrBy(ctx, s.prefix+key, 1)
	if err != nil {
		return 0, fmt.Errorf("usage INCRBY %s: %w", key, err)
	}
	return n, nil
}

// All enumerates every counter via a prefix scan. The tracked key set stays
// small (providers x a few reset windows), so a single unpaginated scan is
// enough.
func (s *RedisStore) All(ctx context.Context) (map[string]int64, error) {
	keys, err := s.kv.Scan(ctx, s.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("usage SCAN: %w", err)
	}

	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		data, err := s.kv.Get(ctx, k)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // expired between SCAN and GET
			}
			return nil, fmt.Errorf("usage GET %s: %w", k, err)
		}
		val, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("usage GET %s parse: %w", k, err)
		}
		out[strings.TrimPrefix(k, s.prefix)] = val
	}
	return out, nil
}
