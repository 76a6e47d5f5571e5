package plan_test

import (
	"errors"
	"testing"

	"github.com/lexforge/lexforge/internal/domain/plan"
	"github.com/lexforge/lexforge/internal/domain/query"
)

func TestBuildWaves_IndependentEnginesCollapseToOneWave(t *testing.T) {
	required := []query.EngineID{query.EngineCitation, query.EngineTimeline, query.EngineRetrieval}
	p, err := plan.BuildWaves(required, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Waves) != 1 {
		t.Fatalf("expected 1 wave, got %d", len(p.Waves))
	}
	if len(p.Waves[0]) != 3 {
		t.Fatalf("expected 3 engines in wave, got %d", len(p.Waves[0]))
	}
}

func TestBuildWaves_SingleEngine(t *testing.T) {
	p, err := plan.BuildWaves([]query.EngineID{query.EngineCitation}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Waves) != 1 || len(p.Waves[0]) != 1 || p.Waves[0][0] != query.EngineCitation {
		t.Fatalf("expected single-engine wave, got %v", p.Waves)
	}
}

func TestBuildWaves_EmptySetYieldsZeroWaves(t *testing.T) {
	p, err := plan.BuildWaves(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Waves) != 0 {
		t.Fatalf("expected 0 waves, got %d", len(p.Waves))
	}
}

func TestBuildWaves_DependencyOrdering(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineContradiction: {query.EngineCitation, query.EngineTimeline},
	}
	required := []query.EngineID{query.EngineCitation, query.EngineTimeline, query.EngineContradiction}
	p, err := plan.BuildWaves(required, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Waves) != 2 {
		t.Fatalf("expected 2 waves, got %d", len(p.Waves))
	}
	if len(p.Waves[0]) != 2 {
		t.Fatalf("expected 2 engines in first wave, got %v", p.Waves[0])
	}
	if len(p.Waves[1]) != 1 || p.Waves[1][0] != query.EngineContradiction {
		t.Fatalf("expected contradiction alone in second wave, got %v", p.Waves[1])
	}
}

func TestBuildWaves_ThreeWaveChain(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineTimeline:      {query.EngineRetrieval},
		query.EngineContradiction: {query.EngineTimeline},
	}
	required := []query.EngineID{query.EngineRetrieval, query.EngineTimeline, query.EngineContradiction}
	p, err := plan.BuildWaves(required, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(p.Waves))
	}
}

func TestBuildWaves_CycleFailsFast(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineCitation: {query.EngineTimeline},
		query.EngineTimeline: {query.EngineCitation},
	}
	_, err := plan.BuildWaves([]query.EngineID{query.EngineCitation, query.EngineTimeline}, deps)
	if !errors.Is(err, plan.ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestBuildWaves_SelfDependency(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineCitation: {query.EngineCitation},
	}
	_, err := plan.BuildWaves([]query.EngineID{query.EngineCitation}, deps)
	if !errors.Is(err, plan.ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}
}

func TestBuildWaves_UnknownDependencyRejected(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineCitation: {"ocr"},
	}
	_, err := plan.BuildWaves([]query.EngineID{query.EngineCitation}, deps)
	if !errors.Is(err, plan.ErrInvalidDependency) {
		t.Fatalf("expected ErrInvalidDependency, got %v", err)
	}
}

func TestBuildWaves_OutsideDependencyIgnored(t *testing.T) {
	// Contradiction depends on citation, but citation was not required:
	// the induced subgraph drops the edge.
	deps := plan.DependencyMap{
		query.EngineContradiction: {query.EngineCitation},
	}
	p, err := plan.BuildWaves([]query.EngineID{query.EngineContradiction}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Waves) != 1 || len(p.Waves[0]) != 1 {
		t.Fatalf("expected single wave, got %v", p.Waves)
	}
}

func TestBuildWaves_EveryEngineAppearsExactlyOnce(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineContradiction: {query.EngineRetrieval},
	}
	required := query.AllEngines()
	p, err := plan.BuildWaves(required, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := make(map[query.EngineID]int)
	for _, w := range p.Waves {
		for _, e := range w {
			seen[e]++
		}
	}
	for _, e := range required {
		if seen[e] != 1 {
			t.Fatalf("engine %s appears %d times", e, seen[e])
		}
	}
}
