package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexforge/lexforge/internal/domain/evidence"
)

// Store implements database.Store over PostgreSQL. Every query filters
// on matter_id; no method may return rows from another matter.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CountDocuments returns the number of ingested documents in a matter.
func (s *Store) CountDocuments(ctx context.Context, matterID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE matter_id = $1`, matterID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// ListCitations returns extracted citations for a matter.
func (s *Store) ListCitations(ctx context.Context, matterID string, limit int) ([]evidence.Citation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, matter_id, document_id, chunk_id, page_number, cite_text, verified, confidence
		 FROM citations WHERE matter_id = $1 ORDER BY document_id, page_number LIMIT $2`,
		matterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list citations: %w", err)
	}
	defer rows.Close()

	var out []evidence.Citation
	for rows.Next() {
		var c evidence.Citation
		if err := rows.Scan(&c.ID, &c.MatterID, &c.DocumentID, &c.ChunkID, &c.PageNumber, &c.CiteText, &c.Verified, &c.Confidence); err != nil {
			return nil, fmt.Errorf("scan citation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListTimelineEvents returns timeline events for a matter ordered by
// occurrence time ascending.
func (s *Store) ListTimelineEvents(ctx context.Context, matterID string, limit int) ([]evidence.TimelineEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, matter_id, document_id, page_number, occurred_at, description, confidence
		 FROM timeline_events WHERE matter_id = $1 ORDER BY occurred_at ASC LIMIT $2`,
		matterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	defer rows.Close()

	var out []evidence.TimelineEvent
	for rows.Next() {
		var ev evidence.TimelineEvent
		if err := rows.Scan(&ev.ID, &ev.MatterID, &ev.DocumentID, &ev.PageNumber, &ev.OccurredAt, &ev.Description, &ev.Confidence); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ListStatements returns extracted statements for a matter ordered by
// topic, then document.
func (s *Store) ListStatements(ctx context.Context, matterID string, limit int) ([]evidence.Statement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, matter_id, document_id, chunk_id, page_number, topic, text, negated, confidence
		 FROM statements WHERE matter_id = $1 ORDER BY topic, document_id LIMIT $2`,
		matterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var out []evidence.Statement
	for rows.Next() {
		var st evidence.Statement
		if err := rows.Scan(&st.ID, &st.MatterID, &st.DocumentID, &st.ChunkID, &st.PageNumber, &st.Topic, &st.Text, &st.Negated, &st.Confidence); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
