// Package audit defines the port for the append-only query audit log —
// the system's defensibility record.
package audit

import (
	"context"
	"time"

	"github.com/lexforge/lexforge/internal/domain/query"
)

// Entry is one audit record covering a complete orchestration pass.
// QueryHash is a sha256 of the query text; the verbatim text is never
// written to the audit log.
type Entry struct {
	ID                string           `json:"id"`
	MatterID          string           `json:"matter_id"`
	QueryID           string           `json:"query_id"`
	QueryHash         string           `json:"query_hash"`
	RequiredEngines   []query.EngineID `json:"required_engines"`
	SuccessfulEngines []query.EngineID `json:"successful_engines"`
	FailedEngines     []query.EngineID `json:"failed_engines"`
	WallClockMS       int64            `json:"wall_clock_ms"`
	CreatedAt         time.Time        `json:"created_at"`
}

// Sink records audit entries. Record is fire-and-forget from the
// orchestrator's point of view: a sink failure must never fail a query.
type Sink interface {
	// Record persists an audit entry.
	Record(ctx context.Context, e *Entry) error

	// ListByMatter returns audit entries for a matter, newest first.
	ListByMatter(ctx context.Context, matterID string, limit int) ([]Entry, error)
}
