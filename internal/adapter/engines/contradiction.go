package engines

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexforge/lexforge/internal/domain/evidence"
	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/database"
)

// Contradiction finds conflicting statements across a matter's
// documents by pairing asserting and negating statements on the same
// topic.
type Contradiction struct {
	store database.Store
	opts  Options
}

// NewContradiction creates the contradiction engine adapter.
func NewContradiction(store database.Store, opts Options) *Contradiction {
	return &Contradiction{store: store, opts: opts}
}

// ID returns the engine identifier.
func (a *Contradiction) ID() query.EngineID { return query.EngineContradiction }

type contradictionPair struct {
	Topic      string             `json:"topic"`
	Asserting  evidence.Statement `json:"asserting"`
	Negating   evidence.Statement `json:"negating"`
	Confidence float64            `json:"confidence"`
}

type contradictionPayload struct {
	StatementsExamined int                 `json:"statements_examined"`
	Contradictions     []contradictionPair `json:"contradictions"`
}

// Execute groups the matter's statements by topic and pairs each
// asserting statement with each negating one on the same topic.
func (a *Contradiction) Execute(ctx context.Context, matterID, queryText string, qctx map[string]string) query.EngineResult {
	return run(ctx, a.opts, a.ID(), matterID, queryText, func(ctx context.Context) (query.EngineResult, error) {
		stmts, err := a.store.ListStatements(ctx, matterID, a.opts.EvidenceLimit)
		if err != nil {
			return query.EngineResult{}, fmt.Errorf("list statements: %w", err)
		}

		byTopic := make(map[string][]evidence.Statement)
		for _, st := range stmts {
			byTopic[st.Topic] = append(byTopic[st.Topic], st)
		}

		var pairs []contradictionPair
		var sources []query.SourceReference
		var confidences []float64
		seen := make(map[string]bool)
		for topic, group := range byTopic {
			for _, assert := range group {
				if assert.Negated {
					continue
				}
				for _, negate := range group {
					if !negate.Negated {
						continue
					}
					conf := min(assert.Confidence, negate.Confidence)
					pairs = append(pairs, contradictionPair{
						Topic:      topic,
						Asserting:  assert,
						Negating:   negate,
						Confidence: conf,
					})
					confidences = append(confidences, conf)
					for _, st := range []evidence.Statement{assert, negate} {
						ref := query.SourceReference{
							DocumentID:  st.DocumentID,
							ChunkID:     st.ChunkID,
							PageNumber:  st.PageNumber,
							TextPreview: st.Text,
							Confidence:  ptr(st.Confidence),
							Engine:      query.EngineContradiction,
						}
						if !seen[ref.DedupKey()] {
							seen[ref.DedupKey()] = true
							sources = append(sources, ref)
						}
					}
				}
			}
		}

		p := contradictionPayload{StatementsExamined: len(stmts), Contradictions: pairs}
		raw, err := json.Marshal(p)
		if err != nil {
			return query.EngineResult{}, fmt.Errorf("marshal payload: %w", err)
		}

		summary := fmt.Sprintf("examined %d statements, found %d contradictions", len(stmts), len(pairs))
		return query.EngineResult{
			Payload:    raw,
			Summary:    summary,
			Sources:    sources,
			Confidence: meanConfidence(confidences),
		}, nil
	})
}
