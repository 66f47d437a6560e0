package reputation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/Orac-G/agent-trust/internal/graph"
	"github.com/Orac-G/agent-trust/internal/kv"
	"github.com/Orac-G/agent-trust/internal/metrics"
)

const (
	// CacheKey is versioned: bump it whenever the vector schema or the
	// weight table changes so stale vectors are never served.
	CacheKey = "reputation:v2"
	// CacheTTL bounds how long a vector may lag behind the graph.
	// Reputation is an opinion, not a key invariant, so a fresh graph
	// against a stale vector is accepted for up to this long.
	CacheTTL = 8 * time.Hour
)

// CachedEngine serves reputation vectors through a KV-backed TTL cache.
// Concurrent writers race last-writer-wins; all writers compute the same
// function from the same snapshot, so the race is benign.
type CachedEngine struct {
	store   kv.Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewCachedEngine wraps Compute with the shared cache.
func NewCachedEngine(store kv.Store, logger zerolog.Logger, collector *metrics.Metrics) *CachedEngine {
	return &CachedEngine{store: store, logger: logger, metrics: collector}
}

// Vector returns the cached reputation vector, computing and writing it
// back on miss. Cache read/write failures are non-fatal: the engine
// always falls through to compute.
func (e *CachedEngine) Vector(ctx context.Context, snapshot *graph.Snapshot) Vector {
	if raw, err := e.store.Get(ctx, CacheKey); err == nil {
		var cached Vector
		if err := json.Unmarshal(raw, &cached); err == nil {
			if e.metrics != nil {
				e.metrics.ObserveReputationCache("hit")
			}
			return cached
		}
		e.logger.Debug().Msg("reputation.cache_decode_failed")
	}
	if e.metrics != nil {
		e.metrics.ObserveReputationCache("miss")
	}

	start := time.Now()
	vector := Compute(snapshot)
	if e.metrics != nil {
		e.metrics.ObserveReputationCompute(time.Since(start))
	}

	if raw, err := json.Marshal(vector); err == nil {
		if err := e.store.Set(ctx, CacheKey, raw, CacheTTL); err != nil {
			e.logger.Debug().Err(err).Msg("reputation.cache_write_failed")
		}
	}
	return vector
}
