// Package breaker isolates failing providers with a per-provider in-memory
// failure/cooldown state machine. State is transient: lost on restart, never
// shared across processes.
package breaker

import (
	"sync"
	"time"
)

const (
	// FailureThreshold is the consecutive failure count that opens a circuit.
	FailureThreshold = 3
	// Cooldown is how long an open circuit blocks a provider.
	Cooldown = 5 * time.Minute
)

// record is lazily created on first failure and deleted wholly on success.
type record struct {
	failures      int
	lastFailure   time.Time
	cooldownUntil time.Time
}

// Breaker tracks failure state per provider name. Safe for concurrent use.
type Breaker struct {
	mu      sync.Mutex
	records map[string]*record
	now     func() time.Time
}

// New creates a Breaker.
func New() *Breaker {
	return &Breaker{records: make(map[string]*record), now: time.Now}
}

// WithClock overrides the wall clock (test-only).
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.now = now
	return b
}

// RecordFailure counts one consecutive failure. Reaching the threshold opens
// the circuit; further failures while open extend the cooldown.
func (b *Breaker) RecordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[provider]
	if !ok {
		rec = &record{}
		b.records[provider] = rec
	}
	rec.failures++
	rec.lastFailure = b.now()
	if rec.failures >= FailureThreshold {
		rec.cooldownUntil = rec.lastFailure.Add(Cooldown)
	}
}

// RecordSuccess clears the provider's record entirely. Reset, not decrement,
// and independent of cooldown expiry.
func (b *Breaker) RecordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, provider)
}

// IsOpen reports whether the provider is currently blocked. A record whose
// cooldown has elapsed is discarded: clean slate on the next attempt.
func (b *Breaker) IsOpen(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[provider]
	if !ok || rec.failures < FailureThreshold {
		return false
	}
	if b.now().Before(rec.cooldownUntil) {
		return true
	}
	delete(b.records, provider) // stale record purge
	return false
}

// Snapshot is a point-in-time view of one provider's circuit for reporting.
type Snapshot struct {
	Failures      int
	LastFailure   time.Time
	CooldownUntil time.Time
	Open          bool
}

// SnapshotOf returns the provider's circuit state, if any record exists.
func (b *Breaker) SnapshotOf(provider string) (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[provider]
	if !ok {
		return Snapshot{}, false
	}
	open := rec.failures >= FailureThreshold && b.now().Before(rec.cooldownUntil)
	return Snapshot{
		Failures:      rec.failures,
		LastFailure:   rec.lastFailure,
		CooldownUntil: rec.cooldownUntil,
		Open:          open,
	}, true
}
