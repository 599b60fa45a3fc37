// Package router walks an ordered provider stack, consults quota and
// circuit state, invokes providers and records consumption, falling back to
// a paid tier only on total free-tier exhaustion.
package router

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
	"github.com/Plaidmustache/mcp-omnisearch/internal/metrics"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/quota"
)

const defaultTimeout = 10 * time.Second

// contentProvider serves every include-content request; no other provider is tried.
const contentProvider = domain.ProviderTavily

// Fixed attempt orders. preferGoogle promotes the Google-results provider to
// the very front; ordering is never adjusted by latency, cost or quality.
var (
	defaultStack = []string{
		domain.ProviderTavily,
		domain.ProviderBrave,
		domain.ProviderKagi,
		domain.ProviderExa,
		domain.ProviderSerpAPI,
	}
	googleStack = []string{
		domain.ProviderSerpAPI,
		domain.ProviderTavily,
		domain.ProviderBrave,
		domain.ProviderKagi,
		domain.ProviderExa,
	}
)

// DefaultStack returns a copy of the free-tier attempt order.
func DefaultStack() []string {
	return append([]string(nil), defaultStack...)
}

// UsageStore is the consumer interface for recording consumption (ISP).
type UsageStore interface {
	Increment(ctx context.Context, key string) (int64, error)
}

// QuotaKeeper answers free-tier availability and derives counter keys.
type QuotaKeeper interface {
	Key(provider string) string
	HasQuota(ctx context.Context, provider string) (bool, error)
}

// Circuit is the failure-isolation state machine.
type Circuit interface {
	RecordFailure(provider string)
	RecordSuccess(provider string)
	IsOpen(provider string) bool
}

// Engine routes search calls across the provider stack. Constructed once per
// process; the provider set is fixed at construction from the credential scan.
type Engine struct {
	providers map[string]domain.Searcher
	quota     QuotaKeeper
	circuit   Circuit
	usage     UsageStore
	timeouts  map[string]time.Duration
	logger    *zap.Logger
}

// New creates a routing engine.
func New(
	providers map[string]domain.Searcher,
	quota QuotaKeeper,
	circuit Circuit,
	usage UsageStore,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		providers: providers,
		quota:     quota,
		circuit:   circuit,
		usage:     usage,
		timeouts:  make(map[string]time.Duration),
		logger:    logger,
	}
}

// WithTimeouts sets per-provider call timeouts (default 10s).
func (e *Engine) WithTimeouts(timeouts map[string]time.Duration) *Engine {
	e.timeouts = timeouts
	return e
}

// Searcher returns the registered provider adapter, for explicit-provider
// calls made outside the stack.
func (e *Engine) Searcher(name string) (domain.Searcher, bool) {
	p, ok := e.providers[name]
	return p, ok
}

// Registered returns the registered provider names, unordered.
func (e *Engine) Registered() []string {
	names := make([]string, 0, len(e.providers))
	for name := range e.providers {
		names = append(names, name)
	}
	return names
}

// Route picks one provider for the request, invokes it and records usage.
// Exactly one provider serves a successful call; individual provider failures
// become circuit-breaker bookkeeping and never surface. Only total
// exhaustion propagates.
func (e *Engine) Route(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error) {
	if req.IncludeContent {
		return e.routeContent(ctx, req)
	}

	stack := defaultStack
	if req.PreferGoogle {
		stack = googleStack
	}

	for _, name := range stack {
		p, ok := e.providers[name]
		if !ok {
			continue
		}
		if e.circuit.IsOpen(name) {
			metrics.CircuitSkipsTotal.WithLabelValues(name).Inc()
			e.logger.Debug("provider skipped, circuit open", zap.String("provider", name))
			continue
		}
		has, err := e.quota.HasQuota(ctx, name)
		if err != nil {
			return domain.RouteResult{}, err
		}
		if !has {
			e.logger.Debug("provider skipped, quota exhausted", zap.String("provider", name))
			continue
		}

		results, err := e.invoke(ctx, name, p.Search, req)
		if err != nil {
			e.circuit.RecordFailure(name)
			e.logger.Warn("provider failed, trying next candidate",
				zap.String("provider", name), zap.Error(err))
			continue
		}

		if err := e.RecordUsage(ctx, name, false); err != nil {
			return domain.RouteResult{}, err
		}
		e.circuit.RecordSuccess(name)
		return domain.RouteResult{Results: results, Provider: name}, nil
	}

	return e.routePaid(ctx, req)
}

// routeContent short-circuits the stack: include-content requests go to the
// one content-capable provider unconditionally.
func (e *Engine) routeContent(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error) {
	p, ok := e.providers[contentProvider]
	if !ok {
		return domain.RouteResult{}, fmt.Errorf(
			"content extraction requires %s: %w", contentProvider, domain.ErrProviderNotConfigured)
	}
	cs, ok := p.(domain.ContentSearcher)
	if !ok {
		return domain.RouteResult{}, fmt.Errorf(
			"content extraction requires %s: %w", contentProvider, domain.ErrProviderNotConfigured)
	}

	results, err := e.invoke(ctx, contentProvider, cs.SearchWithContent, req)
	if err != nil {
		e.circuit.RecordFailure(contentProvider)
		return domain.RouteResult{}, err
	}

	if err := e.RecordUsage(ctx, contentProvider, false); err != nil {
		return domain.RouteResult{}, err
	}
	e.circuit.RecordSuccess(contentProvider)
	return domain.RouteResult{Results: results, Provider: contentProvider}, nil
}

// routePaid is the deliberate overage path once every free candidate is
// exhausted: one designated paid provider, no quota check.
func (e *Engine) routePaid(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error) {
	name := domain.ProviderPerplexity
	if req.PreferGoogle {
		name = domain.ProviderSerpAPI
	}

	p, ok := e.providers[name]
	if !ok {
		metrics.RoutingExhaustedTotal.Inc()
		return domain.RouteResult{}, fmt.Errorf(
			"%w: free tiers exhausted and paid fallback %s is not configured",
			domain.ErrRoutingExhausted, name)
	}

	e.logger.Info("free tiers exhausted, using paid fallback", zap.String("provider", name))
	results, err := e.invoke(ctx, name, p.Search, req)
	if err != nil {
		e.circuit.RecordFailure(name)
		metrics.RoutingExhaustedTotal.Inc()
		return domain.RouteResult{}, fmt.Errorf("%w: paid fallback %s failed: %v",
			domain.ErrRoutingExhausted, name, err)
	}

	if err := e.RecordUsage(ctx, name, true); err != nil {
		return domain.RouteResult{}, err
	}
	e.circuit.RecordSuccess(name)
	metrics.PaidFallbackTotal.WithLabelValues(name).Inc()
	return domain.RouteResult{Results: results, Provider: name, UsedPaidTier: true}, nil
}

// SearchDirect invokes one named provider, bypassing the stack walk. The
// caller asked for this provider specifically, so quota is not consulted;
// usage is still recorded and paid-only providers still charge their paid key.
func (e *Engine) SearchDirect(ctx context.Context, name, query string, limit int) (domain.RouteResult, error) {
	if !domain.KnownProvider(name) {
		return domain.RouteResult{}, fmt.Errorf("%s: %w", name, domain.ErrUnknownProvider)
	}
	p, ok := e.providers[name]
	if !ok {
		return domain.RouteResult{}, fmt.Errorf("%s: %w", name, domain.ErrProviderNotConfigured)
	}

	results, err := e.invoke(ctx, name, p.Search, domain.RouteRequest{Query: query, Limit: limit})
	if err != nil {
		e.circuit.RecordFailure(name)
		return domain.RouteResult{}, err
	}

	paid := e.quota.Key(name) == quota.PaidKey(name)
	if err := e.RecordUsage(ctx, name, paid); err != nil {
		return domain.RouteResult{}, err
	}
	e.circuit.RecordSuccess(name)
	return domain.RouteResult{Results: results, Provider: name, UsedPaidTier: paid}, nil
}

// RecordUsage is the single accounting entry point. Explicit-provider calls
// and the aggregate feature record through here too, so reporting stays
// accurate regardless of path. paid additionally charges the overage key.
func (e *Engine) RecordUsage(ctx context.Context, provider string, paid bool) error {
	key := e.quota.Key(provider)
	if _, err := e.usage.Increment(ctx, key); err != nil {
		return fmt.Errorf("record usage %s: %w", provider, err)
	}
	if paid {
		// Paid-only providers already track straight into their paid key.
		if paidKey := quota.PaidKey(provider); paidKey != key {
			if _, err := e.usage.Increment(ctx, paidKey); err != nil {
				return fmt.Errorf("record paid usage %s: %w", provider, err)
			}
		}
	}
	return nil
}

// invoke runs one provider call under its fixed timeout. A timeout is a
// failure like any other.
func (e *Engine) invoke(
	ctx context.Context,
	name string,
	search func(ctx context.Context, query string, limit int) ([]domain.Result, error),
	req domain.RouteRequest,
) ([]domain.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout(name))
	defer cancel()

	start := time.Now()
	results, err := search(callCtx, req.Query, req.Limit)
	metrics.SearchRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(name, "success").Inc()
	return results, nil
}

func (e *Engine) timeout(name string) time.Duration {
	if t, ok := e.timeouts[name]; ok && t > 0 {
		return t
	}
	return defaultTimeout
}
