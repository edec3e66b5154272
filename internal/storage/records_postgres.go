package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// PostgresRecordStore implements RecordStore over the metric_rows table.
//
//	CREATE TABLE metric_rows (
//	    id              BIGSERIAL PRIMARY KEY,
//	    project_id      TEXT NOT NULL,
//	    impressions     DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    clicks          DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    conversions     DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    cost            DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    revenue         DOUBLE PRECISION,
//	    approved_budget DOUBLE PRECISION NOT NULL DEFAULT 0,
//	    dimension_tags  JSONB NOT NULL DEFAULT '{}',
//	    ts              TIMESTAMPTZ
//	);
type PostgresRecordStore struct {
	pool  *pgxpool.Pool
	limit int
}

// NewPostgresRecordStore creates a store; limit caps rows per query
// (0 means DefaultRowLimit).
func NewPostgresRecordStore(pool *pgxpool.Pool, limit int) *PostgresRecordStore {
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	return &PostgresRecordStore{pool: pool, limit: limit}
}

// ListRows implements RecordStore. Rows are read newest first so the limit
// drops the oldest, then returned oldest first.
func (s *PostgresRecordStore) ListRows(ctx context.Context, projectID string, from, to time.Time) ([]models.MetricRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT impressions, clicks, conversions, cost, revenue, approved_budget, dimension_tags, ts
		FROM metric_rows
		WHERE project_id = $1
		  AND ($2::timestamptz IS NULL OR ts >= $2)
		  AND ($3::timestamptz IS NULL OR ts < $3)
		ORDER BY ts DESC NULLS LAST
		LIMIT $4
	`, projectID, nullTime(from), nullTime(to), s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list metric rows: %w", err)
	}
	defer rows.Close()

	var result []models.MetricRow
	for rows.Next() {
		var (
			r    models.MetricRow
			tags []byte
			ts   *time.Time
		)
		if err := rows.Scan(&r.Impressions, &r.Clicks, &r.Conversions, &r.Cost, &r.Revenue, &r.ApprovedBudget, &tags, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		r.Tags = decodeTags(tags)
		if ts != nil {
			r.Timestamp = ts.UTC()
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metric rows: %w", err)
	}
	reverseRows(result)
	return result, nil
}

// AddRows inserts rows in a single batch.
func (s *PostgresRecordStore) AddRows(ctx context.Context, projectID string, rows []models.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("failed to encode dimension tags: %w", err)
		}
		batch.Queue(`
			INSERT INTO metric_rows (project_id, impressions, clicks, conversions, cost, revenue, approved_budget, dimension_tags, ts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, projectID, r.Impressions, r.Clicks, r.Conversions, r.Cost, r.Revenue, r.ApprovedBudget, tags, nullTime(r.Timestamp))
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert metric row: %w", err)
		}
	}
	return nil
}

// CountRows implements RowCounter.
func (s *PostgresRecordStore) CountRows(ctx context.Context, projectID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM metric_rows WHERE project_id = $1`, projectID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count metric rows: %w", err)
	}
	return n, nil
}

func decodeTags(raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]string{}
	}
	return models.TagsFromMap(m)
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
