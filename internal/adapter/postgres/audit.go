package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/port/audit"
)

// AuditStore implements audit.Sink using PostgreSQL (append-only).
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates an AuditStore backed by the given connection pool.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Record inserts one audit entry into the query_audit table.
func (s *AuditStore) Record(ctx context.Context, e *audit.Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO query_audit (id, matter_id, query_id, query_hash, required_engines, successful_engines, failed_engines, wall_clock_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.MatterID, e.QueryID, e.QueryHash,
		engineStrings(e.RequiredEngines), engineStrings(e.SuccessfulEngines), engineStrings(e.FailedEngines),
		e.WallClockMS)
	if err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// ListByMatter returns audit entries for a matter, newest first.
func (s *AuditStore) ListByMatter(ctx context.Context, matterID string, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, matter_id, query_id, query_hash, required_engines, successful_engines, failed_engines, wall_clock_ms, created_at
		 FROM query_audit WHERE matter_id = $1 ORDER BY created_at DESC LIMIT $2`,
		matterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var required, successful, failed []string
		if err := rows.Scan(&e.ID, &e.MatterID, &e.QueryID, &e.QueryHash, &required, &successful, &failed, &e.WallClockMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.RequiredEngines = engineIDs(required)
		e.SuccessfulEngines = engineIDs(successful)
		e.FailedEngines = engineIDs(failed)
		out = append(out, e)
	}
	return out, rows.Err()
}

func engineStrings(ids []query.EngineID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func engineIDs(ss []string) []query.EngineID {
	out := make([]query.EngineID, len(ss))
	for i, s := range ss {
		out[i] = query.EngineID(s)
	}
	return out
}
