package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lexforge/lexforge/internal/domain"
	"github.com/lexforge/lexforge/internal/domain/plan"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/audit"
	"github.com/lexforge/lexforge/internal/port/engine"
	"github.com/lexforge/lexforge/internal/service"
)

type fakeClassifier struct {
	engines []query.EngineID
	err     error
	calls   int
}

func (c *fakeClassifier) Classify(ctx context.Context, matterID, queryText string) ([]query.EngineID, error) {
	c.calls++
	return c.engines, c.err
}

type fakeSink struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
	done    chan struct{}
}

func newFakeSink() *fakeSink {
	return &fakeSink{done: make(chan struct{}, 64)}
}

func (s *fakeSink) Record(ctx context.Context, e *audit.Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, *e)
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.err
}

func (s *fakeSink) ListByMatter(ctx context.Context, matterID string, limit int) ([]audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Entry
	for _, e := range s.entries {
		if e.MatterID == matterID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeSink) waitForEntry(t *testing.T) audit.Entry {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit entry")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[len(s.entries)-1]
}

func newOrchestrator(cls *fakeClassifier, sink audit.Sink, adapters ...engine.Adapter) *service.OrchestratorService {
	reg := engine.NewRegistry(adapters...)
	cfg := orchCfg(time.Second, 4)
	return service.NewOrchestratorService(
		cls,
		service.NewPlannerService(reg, plan.DependencyMap{}),
		service.NewExecutorService(reg, nil, nil, cfg),
		service.NewAggregatorService(),
		sink,
		nil,
		nil,
	)
}

func TestProcessQueryEndToEnd(t *testing.T) {
	cls := &fakeClassifier{engines: []query.EngineID{query.EngineCitation, query.EngineTimeline}}
	sink := newFakeSink()
	orch := newOrchestrator(cls, sink,
		&timedAdapter{id: query.EngineCitation},
		&timedAdapter{id: query.EngineTimeline},
	)

	res, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{
		MatterID:  "matter-1",
		QueryText: "what happened and what does the contract cite",
	})
	if err != nil {
		t.Fatalf("process query: %v", err)
	}
	if res.QueryID == "" {
		t.Fatal("expected a query id")
	}
	if res.MatterID != "matter-1" {
		t.Fatalf("matter must travel unchanged, got %q", res.MatterID)
	}
	if len(res.SuccessfulEngines) != 2 || len(res.FailedEngines) != 0 {
		t.Fatalf("unexpected partition %v / %v", res.SuccessfulEngines, res.FailedEngines)
	}
	if !strings.Contains(res.UnifiedResponse, "citation summary") || !strings.Contains(res.UnifiedResponse, "timeline summary") {
		t.Fatalf("unified response missing summaries: %q", res.UnifiedResponse)
	}
	if cls.calls != 1 {
		t.Fatalf("expected one classifier call, got %d", cls.calls)
	}

	entry := sink.waitForEntry(t)
	if entry.MatterID != "matter-1" || entry.QueryID != res.QueryID {
		t.Fatalf("audit entry mismatched: %+v", entry)
	}
}

func TestProcessQueryPartialFailure(t *testing.T) {
	cls := &fakeClassifier{engines: []query.EngineID{query.EngineCitation, query.EngineTimeline}}
	orch := newOrchestrator(cls, newFakeSink(),
		&timedAdapter{id: query.EngineCitation},
		&timedAdapter{id: query.EngineTimeline, fail: true},
	)

	res, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{MatterID: "matter-1", QueryText: "q"})
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}
	if len(res.SuccessfulEngines) != 1 || res.SuccessfulEngines[0] != query.EngineCitation {
		t.Fatalf("unexpected successes %v", res.SuccessfulEngines)
	}
	if len(res.FailedEngines) != 1 || res.FailedEngines[0] != query.EngineTimeline {
		t.Fatalf("unexpected failures %v", res.FailedEngines)
	}
	if strings.Contains(res.UnifiedResponse, "backend unavailable") {
		t.Fatal("failure detail must stay inside the engine result")
	}
}

func TestProcessQueryValidation(t *testing.T) {
	orch := newOrchestrator(&fakeClassifier{}, newFakeSink())

	_, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{QueryText: "q"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing matter, got %v", err)
	}

	_, err = orch.ProcessQuery(context.Background(), query.ExecutionRequest{MatterID: "matter-1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty query, got %v", err)
	}
}

func TestProcessQueryClassifierFailureIsFatal(t *testing.T) {
	cls := &fakeClassifier{err: errors.New("proxy unreachable")}
	orch := newOrchestrator(cls, newFakeSink(), &timedAdapter{id: query.EngineCitation})

	_, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{MatterID: "matter-1", QueryText: "q"})
	if !errors.Is(err, domain.ErrClassification) {
		t.Fatalf("expected ErrClassification, got %v", err)
	}
}

func TestProcessQueryExplicitEnginesSkipClassifier(t *testing.T) {
	cls := &fakeClassifier{err: errors.New("should not be called")}
	orch := newOrchestrator(cls, newFakeSink(), &timedAdapter{id: query.EngineCitation})

	res, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{
		MatterID:        "matter-1",
		QueryText:       "q",
		RequiredEngines: []query.EngineID{query.EngineCitation},
	})
	if err != nil {
		t.Fatalf("process query: %v", err)
	}
	if cls.calls != 0 {
		t.Fatalf("classifier must be skipped, got %d calls", cls.calls)
	}
	if len(res.SuccessfulEngines) != 1 {
		t.Fatalf("unexpected successes %v", res.SuccessfulEngines)
	}
}

func TestProcessQueryAuditHashNotVerbatim(t *testing.T) {
	cls := &fakeClassifier{engines: []query.EngineID{query.EngineCitation}}
	sink := newFakeSink()
	orch := newOrchestrator(cls, sink, &timedAdapter{id: query.EngineCitation})

	queryText := "privileged and confidential question"
	if _, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{MatterID: "matter-1", QueryText: queryText}); err != nil {
		t.Fatalf("process query: %v", err)
	}

	entry := sink.waitForEntry(t)
	if entry.QueryHash == queryText {
		t.Fatal("audit must never store verbatim query text")
	}
	want := sha256.Sum256([]byte(queryText))
	if entry.QueryHash != hex.EncodeToString(want[:]) {
		t.Fatalf("expected sha256 hex of query text, got %q", entry.QueryHash)
	}
}

func TestProcessQuerySinkFailureDoesNotFailQuery(t *testing.T) {
	cls := &fakeClassifier{engines: []query.EngineID{query.EngineCitation}}
	sink := newFakeSink()
	sink.err = errors.New("audit db down")
	orch := newOrchestrator(cls, sink, &timedAdapter{id: query.EngineCitation})

	res, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{MatterID: "matter-1", QueryText: "q"})
	if err != nil {
		t.Fatalf("sink failure must not fail the query: %v", err)
	}
	if len(res.SuccessfulEngines) != 1 {
		t.Fatalf("unexpected result %v", res.SuccessfulEngines)
	}
	sink.waitForEntry(t)
}

func TestConcurrentQueriesKeepMattersIsolated(t *testing.T) {
	cls := &fakeClassifier{engines: []query.EngineID{query.EngineCitation, query.EngineTimeline}}
	orch := newOrchestrator(cls, newFakeSink(),
		&timedAdapter{id: query.EngineCitation, delay: 5 * time.Millisecond},
		&timedAdapter{id: query.EngineTimeline, delay: 5 * time.Millisecond},
	)

	matters := []string{"matter-a", "matter-b", "matter-c", "matter-d"}
	var wg sync.WaitGroup
	errCh := make(chan error, len(matters)*8)

	for i := 0; i < 8; i++ {
		for _, m := range matters {
			wg.Add(1)
			go func(m string) {
				defer wg.Done()
				res, err := orch.ProcessQuery(context.Background(), query.ExecutionRequest{MatterID: m, QueryText: "q " + m})
				if err != nil {
					errCh <- err
					return
				}
				if res.MatterID != m {
					errCh <- errors.New("result carries wrong matter " + res.MatterID + " for " + m)
					return
				}
				// Adapters embed the matter into their summaries; a leak
				// from a sibling query would surface another matter here.
				for _, other := range matters {
					if other != m && strings.Contains(res.UnifiedResponse, other) {
						errCh <- errors.New("matter " + other + " leaked into " + m)
						return
					}
				}
			}(m)
		}
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}
}
