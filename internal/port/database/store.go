// Package database defines the port for matter-scoped evidence reads.
// Engines only read during orchestration; all writes belong to the
// ingestion pipeline.
package database

import (
	"context"

	"github.com/lexforge/lexforge/internal/domain/evidence"
)

// Store is the port interface for the matter-scoped evidence store.
// Every method takes the matter ID explicitly and must never return
// rows belonging to another matter.
type Store interface {
	// CountDocuments returns the number of ingested documents in a matter.
	CountDocuments(ctx context.Context, matterID string) (int, error)

	// ListCitations returns extracted citations for a matter.
	ListCitations(ctx context.Context, matterID string, limit int) ([]evidence.Citation, error)

	// ListTimelineEvents returns timeline events for a matter ordered by
	// occurrence time ascending.
	ListTimelineEvents(ctx context.Context, matterID string, limit int) ([]evidence.TimelineEvent, error)

	// ListStatements returns extracted statements for a matter grouped
	// by topic (ordered by topic, then document).
	ListStatements(ctx context.Context, matterID string, limit int) ([]evidence.Statement, error)
}
