package usage

import (
	"context"
	"errors"
	"testing"
)

const testPrefix = "omnisearch:usage:"

func TestRedisStore_GetMissing(t *testing.T) {
	s := NewRedisStore(newMockKV(), testPrefix)

	got, err := s.Get(context.Background(), "tavily:2025-01")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestRedisStore_IncrementNamespacesKeys(t *testing.T) {
	kv := newMockKV()
	s := NewRedisStore(kv, testPrefix)
	ctx := context.Background()

	n, err := s.Increment(ctx, "brave:2025-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d, want 1", n)
	}

	if _, ok := kv.data[testPrefix+"brave:2025-01"]; !ok {
		t.Errorf("key not namespaced, stored keys: %v", kv.data)
	}
}

func TestRedisStore_StoreErrorPropagates(t *testing.T) {
	kv := newMockKV()
	kv.incrFn = func(_ context.Context, _ string, _ int64) (int64, error) {
		return 0, errors.New("connection refused")
	}
	s := NewRedisStore(kv, testPrefix)

	if _, err := s.Increment(context.Background(), "brave:2025-01"); err == nil {
		t.Fatal("expected hard failure when the store is unreachable")
	}
}

func TestRedisStore_AllStripsPrefix(t *testing.T) {
	kv := newMockKV()
	s := NewRedisStore(kv, testPrefix)
	ctx := context.Background()

	_, _ = s.Increment(ctx, "tavily:2025-01")
	_, _ = s.Increment(ctx, "tavily:2025-01")
	_, _ = s.Increment(ctx, "perplexity:paid")

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all["tavily:2025-01"] != 2 {
		t.Errorf("unexpected counters: %v", all)
	}
	if all["perplexity:paid"] != 1 {
		t.Errorf("unexpected counters: %v", all)
	}
	for k := range all {
		if len(k) >= len(testPrefix) && k[:len(testPrefix)] == testPrefix {
			t.Errorf("key %q still carries the namespace prefix", k)
		}
	}
}

func TestRedisStore_GetParseError(t *testing.T) {
	kv := newMockKV()
	kv.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not-a-number"), nil
	}
	s := NewRedisStore(kv, testPrefix)

	if _, err := s.Get(context.Background(), "tavily:2025-01"); err == nil {
		t.Fatal("expected parse error")
	}
}
