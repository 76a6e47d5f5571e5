package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lexforge/lexforge/internal/adapter/otel"
	"github.com/lexforge/lexforge/internal/adapter/ws"
	"github.com/lexforge/lexforge/internal/domain"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/audit"
	"github.com/lexforge/lexforge/internal/port/broadcast"
	"github.com/lexforge/lexforge/internal/port/classifier"
)

// OrchestratorService coordinates one query end to end: validate,
// classify, plan, execute, aggregate, audit. Structural failures
// (validation, classification, configuration) return errors wrapping
// the taxonomy sentinels; engine failures never surface as errors, only
// inside the result.
type OrchestratorService struct {
	classifier classifier.Classifier
	planner    *PlannerService
	executor   *ExecutorService
	aggregator *AggregatorService
	sink       audit.Sink
	hub        broadcast.Broadcaster
	metrics    *otel.Metrics
}

// NewOrchestratorService creates an OrchestratorService. hub and
// metrics may be nil; sink must not be.
func NewOrchestratorService(
	cls classifier.Classifier,
	planner *PlannerService,
	executor *ExecutorService,
	aggregator *AggregatorService,
	sink audit.Sink,
	hub broadcast.Broadcaster,
	metrics *otel.Metrics,
) *OrchestratorService {
	return &OrchestratorService{
		classifier: cls,
		planner:    planner,
		executor:   executor,
		aggregator: aggregator,
		sink:       sink,
		hub:        hub,
		metrics:    metrics,
	}
}

// ProcessQuery runs the full orchestration pipeline for one request.
func (s *OrchestratorService) ProcessQuery(ctx context.Context, req query.ExecutionRequest) (*query.OrchestratorResult, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	queryID := uuid.NewString()
	ctx, span := otel.StartQuerySpan(ctx, queryID, req.MatterID)
	defer span.End()

	if s.metrics != nil {
		s.metrics.QueriesStarted.Add(ctx, 1)
	}

	required := req.RequiredEngines
	if len(required) == 0 {
		var err error
		required, err = s.classifier.Classify(ctx, req.MatterID, req.QueryText)
		if err != nil {
			if s.metrics != nil {
				s.metrics.QueriesFailed.Add(ctx, 1)
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrClassification, err)
		}
	}

	p, err := s.planner.Plan(required)
	if err != nil {
		if s.metrics != nil {
			s.metrics.QueriesFailed.Add(ctx, 1)
		}
		return nil, fmt.Errorf("plan query: %w", err)
	}

	slog.Info("query started",
		"query_id", queryID,
		"matter_id", req.MatterID,
		"engines", required,
		"waves", len(p.Waves))

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, req.MatterID, ws.EventQueryStarted, ws.QueryStartedEvent{
			QueryID:         queryID,
			MatterID:        req.MatterID,
			RequiredEngines: required,
		})
	}

	results := s.executor.ExecuteWaves(ctx, queryID, p, req)
	result := s.aggregator.Aggregate(queryID, req, results, time.Since(start))

	s.recordAudit(ctx, queryID, req, required, result)

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, req.MatterID, ws.EventQueryCompleted, ws.QueryCompletedEvent{
			QueryID:           queryID,
			MatterID:          req.MatterID,
			SuccessfulEngines: result.SuccessfulEngines,
			FailedEngines:     result.FailedEngines,
			WallClockMS:       result.WallClockMS,
		})
	}
	if s.metrics != nil {
		s.metrics.QueriesCompleted.Add(ctx, 1)
		s.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds())
	}

	slog.Info("query completed",
		"query_id", queryID,
		"matter_id", req.MatterID,
		"successful", result.SuccessfulEngines,
		"failed", result.FailedEngines,
		"wall_clock_ms", result.WallClockMS)

	return result, nil
}

// recordAudit writes the audit entry without blocking the response. A
// sink failure is logged and never fails the query. The query text is
// hashed; verbatim text never reaches the audit trail.
func (s *OrchestratorService) recordAudit(ctx context.Context, queryID string, req query.ExecutionRequest, required []query.EngineID, result *query.OrchestratorResult) {
	hash := sha256.Sum256([]byte(req.QueryText))
	entry := &audit.Entry{
		ID:                uuid.NewString(),
		MatterID:          req.MatterID,
		QueryID:           queryID,
		QueryHash:         hex.EncodeToString(hash[:]),
		RequiredEngines:   required,
		SuccessfulEngines: result.SuccessfulEngines,
		FailedEngines:     result.FailedEngines,
		WallClockMS:       result.WallClockMS,
		CreatedAt:         time.Now().UTC(),
	}

	auditCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.sink.Record(auditCtx, entry); err != nil {
			slog.Error("audit record failed",
				"query_id", queryID,
				"matter_id", req.MatterID,
				"error", err)
		}
	}()
}
