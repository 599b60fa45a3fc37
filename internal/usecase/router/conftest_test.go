package router

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/breaker"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/quota"
)

// memStore is an in-memory usage counter store for tests. It satisfies both
// quota.Reader and router.UsageStore.
type memStore struct {
	mu   sync.Mutex
	data map[string]int64
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]int64)}
}

func (m *memStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memStore) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key]++
	return m.data[key], nil
}

func (m *memStore) value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// fakeSearcher is a scriptable provider adapter.
type fakeSearcher struct {
	name  string
	err   error
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]domain.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Result{{Title: "hit for " + query, URL: "https://example.com", Source: f.name, Position: 1}}, nil
}

// fakeContentSearcher additionally serves full-content requests.
type fakeContentSearcher struct {
	fakeSearcher
	contentCalls int
}

func (f *fakeContentSearcher) SearchWithContent(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	f.contentCalls++
	results, err := f.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	results[0].Content = "full page body"
	return results, nil
}

var testClock = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

// testHarness wires a real quota keeper and breaker around an in-memory
// store, with a fixed March 2025 clock.
type testHarness struct {
	store   *memStore
	keeper  *quota.Keeper
	circuit *breaker.Breaker
	engine  *Engine
}

func newHarness(t *testing.T, providers map[string]domain.Searcher, policies map[string]domain.QuotaPolicy) *testHarness {
	t.Helper()
	store := newMemStore()
	keeper := quota.New(store, policies).WithClock(func() time.Time { return testClock })
	circuit := breaker.New().WithClock(func() time.Time { return testClock })
	engine := New(providers, keeper, circuit, store, zap.NewNop())
	return &testHarness{store: store, keeper: keeper, circuit: circuit, engine: engine}
}

func standardPolicies() map[string]domain.QuotaPolicy {
	return map[string]domain.QuotaPolicy{
		domain.ProviderTavily:     {Limit: 1000, Reset: domain.ResetMonthly},
		domain.ProviderBrave:      {Limit: 2000, Reset: domain.ResetMonthly},
		domain.ProviderKagi:       {Limit: 100, Reset: domain.ResetMonthly},
		domain.ProviderExa:        {Limit: 1000, Reset: domain.ResetLifetime},
		domain.ProviderSerpAPI:    {Limit: 250, Reset: domain.ResetMonthly},
		domain.ProviderPerplexity: {Reset: domain.ResetPaid, CostPerQuery: 0.006},
	}
}
