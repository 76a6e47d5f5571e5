package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/lexforge/lexforge/internal/adapter/otel"
	"github.com/lexforge/lexforge/internal/adapter/ws"
	"github.com/lexforge/lexforge/internal/config"
	"github.com/lexforge/lexforge/internal/domain/plan"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/broadcast"
	"github.com/lexforge/lexforge/internal/port/engine"
)

// ExecutorService runs an execution plan: waves strictly in order,
// engines within a wave concurrently, each under its own deadline.
// Execution never fails as a whole; every requested engine yields
// exactly one EngineResult.
type ExecutorService struct {
	registry *engine.Registry
	hub      broadcast.Broadcaster
	metrics  *otel.Metrics
	orchCfg  config.Orchestrator
}

// NewExecutorService creates an ExecutorService. hub and metrics may be
// nil.
func NewExecutorService(registry *engine.Registry, hub broadcast.Broadcaster, metrics *otel.Metrics, orchCfg config.Orchestrator) *ExecutorService {
	return &ExecutorService{
		registry: registry,
		hub:      hub,
		metrics:  metrics,
		orchCfg:  orchCfg,
	}
}

// ExecuteWaves runs every wave of the plan for the given request and
// returns one result per requested engine, in plan order. An engine
// failure or timeout never aborts its wave; later waves still run.
func (s *ExecutorService) ExecuteWaves(ctx context.Context, queryID string, p *plan.ExecutionPlan, req query.ExecutionRequest) []query.EngineResult {
	results := make([]query.EngineResult, 0, p.EngineCount())

	for waveIdx, wave := range p.Waves {
		waveResults := make([]query.EngineResult, len(wave))
		sem := semaphore.NewWeighted(int64(s.orchCfg.MaxParallel))
		var wg sync.WaitGroup

		for i, id := range wave {
			wg.Add(1)
			go func(i int, id query.EngineID) {
				defer wg.Done()
				if err := sem.Acquire(ctx, 1); err != nil {
					waveResults[i] = query.Failed(id, fmt.Sprintf("execution canceled: %v", err), 0)
					return
				}
				defer sem.Release(1)
				waveResults[i] = s.runEngine(ctx, queryID, id, req)
			}(i, id)
		}
		wg.Wait()

		for _, res := range waveResults {
			if !res.Success {
				slog.Warn("engine failed",
					"query_id", queryID,
					"matter_id", req.MatterID,
					"engine", res.Engine,
					"wave", waveIdx,
					"elapsed_ms", res.ElapsedMS,
					"error", res.ErrorMessage)
			}
		}
		results = append(results, waveResults...)
	}

	return results
}

// runEngine executes one engine under its deadline. A slow engine is
// abandoned at the deadline: the timeout result is returned immediately
// and the adapter call is never awaited further.
func (s *ExecutorService) runEngine(ctx context.Context, queryID string, id query.EngineID, req query.ExecutionRequest) query.EngineResult {
	adapter, ok := s.registry.Get(id)
	if !ok {
		// Planner verifies registration; a miss here is a wiring bug.
		return query.Failed(id, fmt.Sprintf("no adapter registered for engine %q", id), 0)
	}

	timeout := s.orchCfg.EngineTimeout
	engCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spanCtx, span := otel.StartEngineSpan(engCtx, string(id), req.MatterID)
	defer span.End()

	start := time.Now()
	done := make(chan query.EngineResult, 1)
	go func() {
		done <- adapter.Execute(spanCtx, req.MatterID, req.QueryText, req.Context)
	}()

	var res query.EngineResult
	select {
	case res = <-done:
	case <-engCtx.Done():
		res = query.Failed(id, fmt.Sprintf("Engine timed out after %ds", int(timeout.Seconds())), timeout)
	}

	s.observe(ctx, queryID, req.MatterID, res, time.Since(start))
	return res
}

func (s *ExecutorService) observe(ctx context.Context, queryID, matterID string, res query.EngineResult, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.EngineDuration.Record(ctx, elapsed.Seconds())
		if !res.Success {
			s.metrics.EngineFailures.Add(ctx, 1)
		}
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, matterID, ws.EventQueryEngine, ws.QueryEngineEvent{
			QueryID:   queryID,
			MatterID:  matterID,
			Engine:    res.Engine,
			Success:   res.Success,
			ElapsedMS: res.ElapsedMS,
		})
	}
}
