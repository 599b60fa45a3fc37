// Package usage persists provider usage counters: a durable mapping from
// string key to non-negative integer, with a local-file backend and a
// Redis backend selected once at construction.
package usage

import "context"

// Store is the usage counter persistence contract.
type Store interface {
	// Get returns the counter value, 0 if the key is absent.
	Get(ctx context.Context, key string) (int64, error)
	// Increment adds one to the counter and returns the new value.
	Increment(ctx context.Context, key string) (int64, error)
	// All returns every tracked counter. Reporting only: no consistency
	// guarantee versus concurrent increments.
	All(ctx context.Context) (map[string]int64, error)
}
