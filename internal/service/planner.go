package service

import (
	"fmt"

	"github.com/lexforge/lexforge/internal/domain"
	"github.com/lexforge/lexforge/internal/domain/plan"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/engine"
)

// PlannerService turns a set of required engines into a wave-ordered
// execution plan using the static engine dependency map.
type PlannerService struct {
	registry *engine.Registry
	deps     plan.DependencyMap
}

// NewPlannerService creates a PlannerService. The dependency map is
// fixed at wiring time; an empty map means all engines are independent
// and collapse into a single wave.
func NewPlannerService(registry *engine.Registry, deps plan.DependencyMap) *PlannerService {
	return &PlannerService{registry: registry, deps: deps}
}

// Plan builds the execution plan for the required engines. Unusable
// configuration (missing adapter, dependency cycle, unknown dependency)
// wraps ErrConfiguration.
func (s *PlannerService) Plan(required []query.EngineID) (*plan.ExecutionPlan, error) {
	for _, id := range required {
		if _, ok := s.registry.Get(id); !ok {
			return nil, fmt.Errorf("%w: no adapter registered for engine %q", domain.ErrConfiguration, id)
		}
	}

	p, err := plan.BuildWaves(required, s.deps)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return p, nil
}
