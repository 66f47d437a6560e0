// Package kv abstracts the shared key-value store holding the graph
// snapshot, the reputation cache, and the rate-limit counters.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the key-value surface the service depends on. The graph
// snapshot is read-only from this service; cache entries and counters
// are write-owned by it.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key. A zero TTL means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Incr atomically increments the counter at key and returns the new
	// value. The TTL is applied only when the counter is created, so a
	// window expires relative to its first increment.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
