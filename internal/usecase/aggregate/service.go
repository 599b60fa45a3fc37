// Package aggregate fans one query out to every available free-tier provider
// concurrently and reranks the merged results. A separate feature from the
// routing engine: it shares the accounting entry point, not the routing
// algorithm.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

const (
	defaultLimit   = 10
	defaultTimeout = 10 * time.Second
)

// Candidates is the routing engine view the aggregator consumes: candidate
// lookup plus the shared usage-recording entry point.
type Candidates interface {
	Searcher(name string) (domain.Searcher, bool)
	RecordUsage(ctx context.Context, provider string, paid bool) error
}

// QuotaKeeper answers free-tier availability.
type QuotaKeeper interface {
	HasQuota(ctx context.Context, provider string) (bool, error)
}

// Circuit reports open circuits.
type Circuit interface {
	IsOpen(provider string) bool
}

// ranking is one provider's ordered result list.
type ranking struct {
	provider string
	results  []domain.Result
}

// Service runs multi-source searches.
type Service struct {
	stack    []string
	engine   Candidates
	quota    QuotaKeeper
	circuit  Circuit
	timeouts map[string]time.Duration
	logger   *zap.Logger
}

// New creates an aggregate search service over the given provider order.
func New(stack []string, engine Candidates, quota QuotaKeeper, circuit Circuit, logger *zap.Logger) *Service {
	return &Service{
		stack:    stack,
		engine:   engine,
		quota:    quota,
		circuit:  circuit,
		timeouts: make(map[string]time.Duration),
		logger:   logger,
	}
}

// WithTimeouts sets per-provider call timeouts (default 10s).
func (s *Service) WithTimeouts(timeouts map[string]time.Duration) *Service {
	s.timeouts = timeouts
	return s
}

// Search queries every registered, quota-available, circuit-closed provider
// concurrently, tolerates individual failures, and fuses the result lists.
// Usage is recorded per responding provider through the engine's accounting
// entry point.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]domain.Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		mu       sync.Mutex
		rankings []ranking
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range s.stack {
		p, ok := s.engine.Searcher(name)
		if !ok {
			continue
		}
		if s.circuit.IsOpen(name) {
			continue
		}
		has, err := s.quota.HasQuota(ctx, name)
		if err != nil {
			return nil, err
		}
		if !has {
			continue
		}

		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.timeout(name))
			defer cancel()

			results, err := p.Search(callCtx, query, limit)
			if err != nil {
				// One source failing must not sink the fan-out.
				s.logger.Warn("aggregate source failed",
					zap.String("provider", name), zap.Error(err))
				return nil
			}
			if err := s.engine.RecordUsage(ctx, name, false); err != nil {
				return err
			}
			mu.Lock()
			rankings = append(rankings, ranking{provider: name, results: results})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(rankings) == 0 {
		return nil, domain.ErrRoutingExhausted
	}

	// Deterministic fusion input: stack order, not goroutine finish order.
	order := make(map[string]int, len(s.stack))
	for i, name := range s.stack {
		order[name] = i
	}
	sort.Slice(rankings, func(i, j int) bool {
		return order[rankings[i].provider] < order[rankings[j].provider]
	})

	lists := make([][]domain.Result, 0, len(rankings))
	for _, r := range rankings {
		lists = append(lists, r.results)
	}

	return fuseRRF(lists, limit), nil
}

func (s *Service) timeout(name string) time.Duration {
	if t, ok := s.timeouts[name]; ok && t > 0 {
		return t
	}
	return defaultTimeout
}
