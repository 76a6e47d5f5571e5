package engines

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexforge/lexforge/internal/domain/evidence"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/database"
)

// Citation checks the legal citations extracted from a matter's
// documents and reports their verification state.
type Citation struct {
	store database.Store
	opts  Options
}

// NewCitation creates the citation engine adapter.
func NewCitation(store database.Store, opts Options) *Citation {
	return &Citation{store: store, opts: opts}
}

// ID returns the engine identifier.
func (a *Citation) ID() query.EngineID { return query.EngineCitation }

type citationPayload struct {
	Total      int                 `json:"total"`
	Verified   int                 `json:"verified"`
	Unverified int                 `json:"unverified"`
	Citations  []evidence.Citation `json:"citations"`
}

// Execute lists the matter's citations and summarizes verification.
func (a *Citation) Execute(ctx context.Context, matterID, queryText string, qctx map[string]string) query.EngineResult {
	return run(ctx, a.opts, a.ID(), matterID, queryText, func(ctx context.Context) (query.EngineResult, error) {
		cites, err := a.store.ListCitations(ctx, matterID, a.opts.EvidenceLimit)
		if err != nil {
			return query.EngineResult{}, fmt.Errorf("list citations: %w", err)
		}

		p := citationPayload{Total: len(cites), Citations: cites}
		sources := make([]query.SourceReference, 0, len(cites))
		confidences := make([]float64, 0, len(cites))
		for _, c := range cites {
			if c.Verified {
				p.Verified++
			} else {
				p.Unverified++
			}
			sources = append(sources, query.SourceReference{
				DocumentID:  c.DocumentID,
				ChunkID:     c.ChunkID,
				PageNumber:  c.PageNumber,
				TextPreview: c.CiteText,
				Confidence:  ptr(c.Confidence),
				Engine:      query.EngineCitation,
			})
			confidences = append(confidences, c.Confidence)
		}

		raw, err := json.Marshal(p)
		if err != nil {
			return query.EngineResult{}, fmt.Errorf("marshal payload: %w", err)
		}

		summary := fmt.Sprintf("checked %d citations: %d verified, %d unverified", p.Total, p.Verified, p.Unverified)
		return query.EngineResult{
			Payload:    raw,
			Summary:    summary,
			Sources:    sources,
			Confidence: meanConfidence(confidences),
		}, nil
	})
}
