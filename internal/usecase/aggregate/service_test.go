package aggregate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

type stubSearcher struct {
	results []domain.Result
	err     error
	calls   int
	mu      sync.Mutex
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int) ([]domain.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubEngine struct {
	searchers map[string]domain.Searcher
	mu        sync.Mutex
	recorded  []string
}

func (e *stubEngine) Searcher(name string) (domain.Searcher, bool) {
	p, ok := e.searchers[name]
	return p, ok
}

func (e *stubEngine) RecordUsage(_ context.Context, provider string, _ bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorded = append(e.recorded, provider)
	return nil
}

type stubQuota struct {
	exhausted map[string]bool
}

func (q *stubQuota) HasQuota(_ context.Context, provider string) (bool, error) {
	return !q.exhausted[provider], nil
}

type stubCircuit struct {
	open map[string]bool
}

func (c *stubCircuit) IsOpen(provider string) bool { return c.open[provider] }

func newTestService(engine *stubEngine, quota *stubQuota, circuit *stubCircuit) *Service {
	return New([]string{"tavily", "brave", "kagi"}, engine, quota, circuit, zap.NewNop())
}

func TestAggregate_FansOutAndRecordsUsage(t *testing.T) {
	engine := &stubEngine{searchers: map[string]domain.Searcher{
		"tavily": &stubSearcher{results: []domain.Result{{URL: "https://a"}, {URL: "https://b"}}},
		"brave":  &stubSearcher{results: []domain.Result{{URL: "https://b"}, {URL: "https://c"}}},
	}}
	svc := newTestService(engine, &stubQuota{}, &stubCircuit{})

	results, err := svc.Search(context.Background(), "golang", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 fused results, got %d", len(results))
	}
	if results[0].URL != "https://b" {
		t.Errorf("top result = %s, want the URL both sources agree on", results[0].URL)
	}
	if len(engine.recorded) != 2 {
		t.Errorf("usage recorded for %d providers, want 2: %v", len(engine.recorded), engine.recorded)
	}
}

func TestAggregate_ToleratesPartialFailure(t *testing.T) {
	engine := &stubEngine{searchers: map[string]domain.Searcher{
		"tavily": &stubSearcher{err: errors.New("boom")},
		"brave":  &stubSearcher{results: []domain.Result{{URL: "https://c"}}},
	}}
	svc := newTestService(engine, &stubQuota{}, &stubCircuit{})

	results, err := svc.Search(context.Background(), "golang", 10)
	if err != nil {
		t.Fatalf("one failing source must not fail the fan-out: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://c" {
		t.Errorf("unexpected results: %v", results)
	}
	// Only the responding provider is charged.
	if len(engine.recorded) != 1 || engine.recorded[0] != "brave" {
		t.Errorf("unexpected usage recording: %v", engine.recorded)
	}
}

func TestAggregate_SkipsExhaustedAndOpen(t *testing.T) {
	tavily := &stubSearcher{results: []domain.Result{{URL: "https://a"}}}
	brave := &stubSearcher{results: []domain.Result{{URL: "https://b"}}}
	kagi := &stubSearcher{results: []domain.Result{{URL: "https://c"}}}
	engine := &stubEngine{searchers: map[string]domain.Searcher{
		"tavily": tavily, "brave": brave, "kagi": kagi,
	}}
	svc := newTestService(engine,
		&stubQuota{exhausted: map[string]bool{"brave": true}},
		&stubCircuit{open: map[string]bool{"kagi": true}},
	)

	results, err := svc.Search(context.Background(), "golang", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected only tavily's result, got %d", len(results))
	}
	if brave.calls != 0 || kagi.calls != 0 {
		t.Errorf("skipped providers were called: brave=%d kagi=%d", brave.calls, kagi.calls)
	}
}

func TestAggregate_AllSourcesFail(t *testing.T) {
	engine := &stubEngine{searchers: map[string]domain.Searcher{
		"tavily": &stubSearcher{err: errors.New("boom")},
	}}
	svc := newTestService(engine, &stubQuota{}, &stubCircuit{})

	_, err := svc.Search(context.Background(), "golang", 10)
	if !errors.Is(err, domain.ErrRoutingExhausted) {
		t.Fatalf("expected ErrRoutingExhausted, got %v", err)
	}
}
