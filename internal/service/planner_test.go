package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lexforge/lexforge/internal/domain"
	"github.com/lexforge/lexforge/internal/domain/plan"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/engine"
	"github.com/lexforge/lexforge/internal/service"
)

type stubAdapter struct {
	id query.EngineID
}

func (a *stubAdapter) ID() query.EngineID { return a.id }

func (a *stubAdapter) Execute(ctx context.Context, matterID, queryText string, qctx map[string]string) query.EngineResult {
	return query.EngineResult{Engine: a.id, Success: true}
}

func fullRegistry() *engine.Registry {
	var adapters []engine.Adapter
	for _, id := range query.AllEngines() {
		adapters = append(adapters, &stubAdapter{id: id})
	}
	return engine.NewRegistry(adapters...)
}

func TestPlanIndependentEnginesCollapseToOneWave(t *testing.T) {
	p := service.NewPlannerService(fullRegistry(), plan.DependencyMap{})

	got, err := p.Plan([]query.EngineID{query.EngineCitation, query.EngineTimeline, query.EngineRetrieval})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(got.Waves) != 1 || len(got.Waves[0]) != 3 {
		t.Fatalf("expected one wave of 3, got %v", got.Waves)
	}
}

func TestPlanRespectsDependencies(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineContradiction: {query.EngineRetrieval},
	}
	p := service.NewPlannerService(fullRegistry(), deps)

	got, err := p.Plan([]query.EngineID{query.EngineContradiction, query.EngineRetrieval})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(got.Waves) != 2 {
		t.Fatalf("expected two waves, got %v", got.Waves)
	}
	if got.Waves[0][0] != query.EngineRetrieval || got.Waves[1][0] != query.EngineContradiction {
		t.Fatalf("unexpected wave order %v", got.Waves)
	}
}

func TestPlanCycleIsConfigurationError(t *testing.T) {
	deps := plan.DependencyMap{
		query.EngineCitation: {query.EngineTimeline},
		query.EngineTimeline: {query.EngineCitation},
	}
	p := service.NewPlannerService(fullRegistry(), deps)

	_, err := p.Plan([]query.EngineID{query.EngineCitation, query.EngineTimeline})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !errors.Is(err, plan.ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle in chain, got %v", err)
	}
}

func TestPlanMissingAdapterIsConfigurationError(t *testing.T) {
	registry := engine.NewRegistry(&stubAdapter{id: query.EngineCitation})
	p := service.NewPlannerService(registry, plan.DependencyMap{})

	_, err := p.Plan([]query.EngineID{query.EngineTimeline})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
