package usage

import (
	"context"
	"strconv"
	"sync"

	"github.com/Plaidmustache/mcp-omnisearch/internal/db"
)

// mockKV implements the consumer interface for tests.
type mockKV struct {
	mu      sync.Mutex
	data    map[string]int64
	getFn   func(ctx context.Context, key string) ([]byte, error)
	incrFn  func(ctx context.Context, key string, val int64) (int64, error)
	scanFn  func(ctx context.Context, pattern string) ([]string, error)
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string]int64)}
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (m *mockKV) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, key, val)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] += val
	return m.data[key], nil
}

func (m *mockKV) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := pattern[:len(pattern)-1] // strip trailing *
	var keys []string
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
