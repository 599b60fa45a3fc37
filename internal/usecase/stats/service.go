// Package stats builds the read-only usage/health report consumed by the
// reporting surface. One pass over the counter set, no side effects; data may
// be slightly stale relative to in-flight increments.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/breaker"
	"github.com/Plaidmustache/mcp-omnisearch/internal/usecase/quota"
)

// Health classifies a provider's circuit state.
type Health string

const (
	// Healthy means no recorded failures.
	Healthy Health = "healthy"
	// Degraded means some failures below the circuit threshold.
	Degraded Health = "degraded"
	// Down means the circuit is open.
	Down Health = "down"
)

// UsageReader enumerates all tracked counters (ISP).
type UsageReader interface {
	All(ctx context.Context) (map[string]int64, error)
}

// CircuitReader exposes per-provider circuit snapshots.
type CircuitReader interface {
	SnapshotOf(provider string) (breaker.Snapshot, bool)
}

// KeyDeriver derives the current free-tier counter key per provider.
type KeyDeriver interface {
	Key(provider string) string
	Policies() map[string]domain.QuotaPolicy
}

// ProviderStats is one provider's usage and health view.
type ProviderStats struct {
	Provider      string    `json:"provider"`
	Registered    bool      `json:"registered"`
	PaidOnly      bool      `json:"paid_only"`
	Used          int64     `json:"used"`
	Limit         int64     `json:"limit,omitempty"`
	Remaining     int64     `json:"remaining,omitempty"`
	Overage       int64     `json:"overage,omitempty"`
	EstimatedCost float64   `json:"estimated_cost,omitempty"`
	Health        Health    `json:"health"`
	Failures      int       `json:"failures,omitempty"`
	CooldownUntil time.Time `json:"cooldown_until,omitzero"`
}

// Report is the full stats view across the configured roster.
type Report struct {
	Providers   []ProviderStats `json:"providers"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Service aggregates usage counters and circuit state.
type Service struct {
	usage      UsageReader
	keys       KeyDeriver
	circuit    CircuitReader
	registered map[string]bool
	now        func() time.Time
}

// New creates a stats service. registered marks which configured providers
// actually hold credentials.
func New(usage UsageReader, keys KeyDeriver, circuit CircuitReader, registered []string) *Service {
	reg := make(map[string]bool, len(registered))
	for _, name := range registered {
		reg[name] = true
	}
	return &Service{usage: usage, keys: keys, circuit: circuit, registered: reg, now: time.Now}
}

// WithClock overrides the wall clock (test-only).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Report builds the usage report for every configured provider.
func (s *Service) Report(ctx context.Context) (Report, error) {
	counters, err := s.usage.All(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("read usage counters: %w", err)
	}

	policies := s.keys.Policies()
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)

	report := Report{GeneratedAt: s.now().UTC()}
	for _, name := range names {
		policy := policies[name]
		ps := ProviderStats{
			Provider:   name,
			Registered: s.registered[name],
			PaidOnly:   policy.PaidOnly(),
			Health:     Healthy,
		}

		if policy.PaidOnly() {
			ps.Used = counters[quota.PaidKey(name)]
			ps.EstimatedCost = float64(ps.Used) * policy.CostPerQuery
		} else {
			ps.Used = counters[s.keys.Key(name)]
			ps.Limit = policy.Limit
			ps.Remaining = policy.Limit - ps.Used
			if ps.Remaining < 0 {
				ps.Remaining = 0
			}
			ps.Overage = counters[quota.PaidKey(name)]
		}

		if snap, ok := s.circuit.SnapshotOf(name); ok {
			ps.Failures = snap.Failures
			if snap.Open {
				ps.Health = Down
				ps.CooldownUntil = snap.CooldownUntil
			} else {
				ps.Health = Degraded
			}
		}

		report.Providers = append(report.Providers, ps)
	}

	return report, nil
}
