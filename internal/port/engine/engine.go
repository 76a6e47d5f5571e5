// Package engine defines the normalized execution contract every
// reasoning engine is invoked through, and the registry mapping engine
// identifiers to adapter instances.
package engine

import (
	"context"
	"sort"

	"github.com/lexforge/lexforge/internal/domain/query"
)

// Adapter normalizes one reasoning engine behind a uniform contract.
//
// Execute never returns an error and never panics past its boundary:
// every engine-specific failure is converted into a failed EngineResult
// with a descriptive message. Implementations must stamp matterID into
// every outbound call — the adapter layer is the single place where
// matter scoping is enforced at the call boundary.
type Adapter interface {
	// ID returns the engine identifier this adapter serves.
	ID() query.EngineID

	// Execute runs the engine for one query and returns its result.
	Execute(ctx context.Context, matterID, queryText string, qctx map[string]string) query.EngineResult
}

// Registry maps engine identifiers to adapter instances. It is built
// once at wiring time and read-only afterwards, so lookups need no lock.
type Registry struct {
	adapters map[query.EngineID]Adapter
}

// NewRegistry creates a Registry over the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[query.EngineID]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.ID()] = a
	}
	return &Registry{adapters: m}
}

// Get returns the adapter for the given engine, if registered.
func (r *Registry) Get(id query.EngineID) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns the registered engine identifiers in stable order.
func (r *Registry) IDs() []query.EngineID {
	ids := make([]query.EngineID, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
