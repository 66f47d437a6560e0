package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Orac-G/agent-trust/internal/kv"
)

// ErrUnavailable indicates the snapshot is missing from the KV store or
// cannot be decoded. Callers surface this as a 503.
var ErrUnavailable = errors.New("graph: knowledge graph unavailable")

// Loader fetches the whole-graph snapshot from the shared KV store.
// The snapshot is opaque and atomic; there are no partial reads.
type Loader struct {
	store kv.Store
	key   string
}

// NewLoader creates a Loader reading snapshots under the given key.
func NewLoader(store kv.Store, key string) *Loader {
	return &Loader{store: store, key: key}
}

// Load returns the current snapshot or ErrUnavailable.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &snapshot, nil
}
