// Package plan defines the ExecutionPlan entity and the wave builder
// that groups required engines into parallel execution waves.
package plan

import "github.com/lexforge/lexforge/internal/domain/query"

// DependencyMap declares which engines must have completed before an
// engine may start. Ordering only — engines read the shared
// matter-scoped store, they do not consume each other's output.
type DependencyMap map[query.EngineID][]query.EngineID

// ExecutionPlan is an ordered sequence of waves. Waves execute strictly
// in order; engines within a wave execute concurrently. Every required
// engine appears in exactly one wave.
type ExecutionPlan struct {
	Waves [][]query.EngineID `json:"waves"`
}

// EngineCount returns the total number of engines across all waves.
func (p *ExecutionPlan) EngineCount() int {
	n := 0
	for _, w := range p.Waves {
		n += len(w)
	}
	return n
}

// Engines returns every engine in the plan, wave order preserved.
func (p *ExecutionPlan) Engines() []query.EngineID {
	out := make([]query.EngineID, 0, p.EngineCount())
	for _, w := range p.Waves {
		out = append(out, w...)
	}
	return out
}
