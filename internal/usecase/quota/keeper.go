// Package quota derives usage counter keys and answers whether a provider
// still has free-tier allowance.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/Plaidmustache/mcp-omnisearch/internal/domain"
)

// Reader is the consumer interface for counter reads (ISP).
type Reader interface {
	Get(ctx context.Context, key string) (int64, error)
}

// Keeper binds the quota policy table to a usage store.
type Keeper struct {
	store    Reader
	policies map[string]domain.QuotaPolicy
	now      func() time.Time
}

// New creates a Keeper.
func New(store Reader, policies map[string]domain.QuotaPolicy) *Keeper {
	return &Keeper{store: store, policies: policies, now: time.Now}
}

// WithClock overrides the wall clock (test-only).
func (k *Keeper) WithClock(now func() time.Time) *Keeper {
	k.now = now
	return k
}

// Policies returns the full policy table, for reporting.
func (k *Keeper) Policies() map[string]domain.QuotaPolicy {
	return k.policies
}

// Key derives the free-tier counter key for a provider. Monthly quotas
// rotate implicitly with the UTC wall-clock month; lifetime quotas use a
// fixed suffix; paid-only providers track straight into their paid key.
func (k *Keeper) Key(provider string) string {
	p := k.policies[provider]
	switch p.Reset {
	case domain.ResetLifetime:
		return provider + ":lifetime"
	case domain.ResetPaid:
		return PaidKey(provider)
	default:
		return fmt.Sprintf("%s:%s", provider, k.now().UTC().Format("2006-01"))
	}
}

// PaidKey is the overage counter key, always tracked separately regardless
// of reset type.
func PaidKey(provider string) string {
	return provider + ":paid"
}

// HasQuota reports whether the provider's free tier still has room.
// Paid-only and unknown providers never have free quota.
func (k *Keeper) HasQuota(ctx context.Context, provider string) (bool, error) {
	p, ok := k.policies[provider]
	if !ok || p.PaidOnly() {
		return false, nil
	}

	used, err := k.store.Get(ctx, k.Key(provider))
	if err != nil {
		return false, fmt.Errorf("quota check %s: %w", provider, err)
	}
	return used < p.Limit, nil
}
