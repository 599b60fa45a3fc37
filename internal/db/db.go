package db

import (
	"context"
	"time"
)

// Store is the key-value database facade. Consumers use the narrow
// sub-interfaces (ISP).
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the counter operations the usage layer needs.
// IncrBy is atomic against concurrent writers; this is the only operation
// required to be.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}
