package engines

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexforge/lexforge/internal/domain/evidence"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/database"
)

// Timeline reconstructs the chronology of events extracted from a
// matter's documents.
type Timeline struct {
	store database.Store
	opts  Options
}

// NewTimeline creates the timeline engine adapter.
func NewTimeline(store database.Store, opts Options) *Timeline {
	return &Timeline{store: store, opts: opts}
}

// ID returns the engine identifier.
func (a *Timeline) ID() query.EngineID { return query.EngineTimeline }

type timelinePayload struct {
	Total  int                      `json:"total"`
	From   string                   `json:"from,omitempty"`
	To     string                   `json:"to,omitempty"`
	Events []evidence.TimelineEvent `json:"events"`
}

// Execute lists the matter's timeline events in chronological order.
func (a *Timeline) Execute(ctx context.Context, matterID, queryText string, qctx map[string]string) query.EngineResult {
	return run(ctx, a.opts, a.ID(), matterID, queryText, func(ctx context.Context) (query.EngineResult, error) {
		events, err := a.store.ListTimelineEvents(ctx, matterID, a.opts.EvidenceLimit)
		if err != nil {
			return query.EngineResult{}, fmt.Errorf("list timeline events: %w", err)
		}

		p := timelinePayload{Total: len(events), Events: events}
		if len(events) > 0 {
			p.From = events[0].OccurredAt.Format("2006-01-02")
			p.To = events[len(events)-1].OccurredAt.Format("2006-01-02")
		}

		sources := make([]query.SourceReference, 0, len(events))
		confidences := make([]float64, 0, len(events))
		for _, ev := range events {
			sources = append(sources, query.SourceReference{
				DocumentID:  ev.DocumentID,
				PageNumber:  ev.PageNumber,
				TextPreview: ev.Description,
				Confidence:  ptr(ev.Confidence),
				Engine:      query.EngineTimeline,
			})
			confidences = append(confidences, ev.Confidence)
		}

		raw, err := json.Marshal(p)
		if err != nil {
			return query.EngineResult{}, fmt.Errorf("marshal payload: %w", err)
		}

		summary := fmt.Sprintf("reconstructed timeline of %d events", p.Total)
		if p.Total > 0 {
			summary = fmt.Sprintf("reconstructed timeline of %d events from %s to %s", p.Total, p.From, p.To)
		}
		return query.EngineResult{
			Payload:    raw,
			Summary:    summary,
			Sources:    sources,
			Confidence: meanConfidence(confidences),
		}, nil
	})
}
