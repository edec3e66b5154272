package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// ClickHouseRecordStore implements RecordStore over a ClickHouse table
// laid out as
//
//	CREATE TABLE metric_rows (
//	    project_id      String,
//	    impressions     Float64,
//	    clicks          Float64,
//	    conversions     Float64,
//	    cost            Float64,
//	    revenue         Nullable(Float64),
//	    approved_budget Float64,
//	    dimension_tags  Map(String, String),
//	    ts              DateTime64(3, 'UTC')
//	) ENGINE = MergeTree ORDER BY (project_id, ts);
type ClickHouseRecordStore struct {
	conn  driver.Conn
	table string
	limit int
}

// NewClickHouseRecordStore creates a store reading from table.
func NewClickHouseRecordStore(conn driver.Conn, table string, limit int) *ClickHouseRecordStore {
	if table == "" {
		table = "metric_rows"
	}
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	return &ClickHouseRecordStore{conn: conn, table: table, limit: limit}
}

// ListRows implements RecordStore. As in the Postgres store the limit keeps
// the newest rows.
func (s *ClickHouseRecordStore) ListRows(ctx context.Context, projectID string, from, to time.Time) ([]models.MetricRow, error) {
	query := fmt.Sprintf(`
		SELECT impressions, clicks, conversions, cost, revenue, approved_budget, dimension_tags, ts
		FROM %s
		WHERE project_id = ?`, s.table)
	args := []any{projectID}
	if !from.IsZero() {
		query += " AND ts >= ?"
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += " AND ts < ?"
		args = append(args, to.UTC())
	}
	query += fmt.Sprintf(" ORDER BY ts DESC LIMIT %d", s.limit)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clickhouse metric rows: %w", err)
	}
	defer rows.Close()

	var result []models.MetricRow
	for rows.Next() {
		var (
			r  models.MetricRow
			ts time.Time
		)
		if err := rows.Scan(&r.Impressions, &r.Clicks, &r.Conversions, &r.Cost, &r.Revenue, &r.ApprovedBudget, &r.Tags, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan clickhouse metric row: %w", err)
		}
		if ts.Unix() > 0 {
			r.Timestamp = ts.UTC()
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clickhouse metric rows: %w", err)
	}
	reverseRows(result)
	return result, nil
}
