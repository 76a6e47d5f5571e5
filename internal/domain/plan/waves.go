package plan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lexforge/lexforge/internal/domain/query"
)

var (
	ErrDependencyCycle   = errors.New("engine dependencies contain a cycle")
	ErrInvalidDependency = errors.New("dependency map references an unknown engine")
)

// BuildWaves groups the required engines into execution waves using
// Kahn's algorithm over the induced dependency subgraph: wave k holds
// every engine whose dependencies are fully contained in waves 0..k-1.
// Dependencies on engines outside the required set are ignored.
//
// An empty required set yields a plan with zero waves. A cyclic
// dependency map is a configuration error, never a loop: the sort is
// bounded at len(required)+1 rounds.
func BuildWaves(required []query.EngineID, deps DependencyMap) (*ExecutionPlan, error) {
	if len(required) == 0 {
		return &ExecutionPlan{}, nil
	}

	inSet := make(map[query.EngineID]bool, len(required))
	for _, e := range required {
		inSet[e] = true
	}

	inDegree := make(map[query.EngineID]int, len(inSet))
	adj := make(map[query.EngineID][]query.EngineID, len(inSet))
	for e := range inSet {
		inDegree[e] = 0
	}
	for e := range inSet {
		for _, dep := range deps[e] {
			if !dep.Valid() {
				return nil, fmt.Errorf("engine %s depends on %q: %w", e, dep, ErrInvalidDependency)
			}
			if dep == e {
				return nil, fmt.Errorf("engine %s depends on itself: %w", e, ErrDependencyCycle)
			}
			if !inSet[dep] {
				continue // induced subgraph: outside deps do not gate this plan
			}
			adj[dep] = append(adj[dep], e)
			inDegree[e]++
		}
	}

	remaining := len(inSet)
	p := &ExecutionPlan{}
	for round := 0; round <= len(inSet); round++ {
		if remaining == 0 {
			return p, nil
		}

		var wave []query.EngineID
		for e, d := range inDegree {
			if d == 0 {
				wave = append(wave, e)
			}
		}
		if len(wave) == 0 {
			return nil, ErrDependencyCycle
		}
		sort.Slice(wave, func(i, j int) bool { return wave[i] < wave[j] })

		for _, e := range wave {
			delete(inDegree, e)
			for _, next := range adj[e] {
				if _, ok := inDegree[next]; ok {
					inDegree[next]--
				}
			}
		}
		remaining -= len(wave)
		p.Waves = append(p.Waves, wave)
	}

	// Round guard exhausted with engines left: only reachable through a
	// cycle the wave scan somehow missed.
	return nil, ErrDependencyCycle
}
