// Package storage holds the record stores that feed the aggregator and the
// ledgers that account generative usage.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// RecordStore reads the metric rows of a project. A zero from or to leaves
// that side of the window open; to is exclusive.
type RecordStore interface {
	ListRows(ctx context.Context, projectID string, from, to time.Time) ([]models.MetricRow, error)
}

// RecordWriter is implemented by stores that accept new rows.
type RecordWriter interface {
	AddRows(ctx context.Context, projectID string, rows []models.MetricRow) error
}

// RowCounter is implemented by stores that can count a project's rows.
type RowCounter interface {
	CountRows(ctx context.Context, projectID string) (int64, error)
}

// DefaultRowLimit caps the rows returned by one ListRows call.
const DefaultRowLimit = 100000

func inWindow(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && !ts.Before(to) {
		return false
	}
	return true
}

// keepNewest trims rows, sorted oldest first, to its newest limit entries.
// A limit of 0 keeps everything.
func keepNewest(rows []models.MetricRow, limit int) []models.MetricRow {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	return rows[len(rows)-limit:]
}

// reverseRows flips a newest-first query result into oldest-first order.
func reverseRows(rows []models.MetricRow) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// InMemoryRecordStore keeps rows per project in memory.
type InMemoryRecordStore struct {
	mu    sync.RWMutex
	rows  map[string][]models.MetricRow
	limit int
}

// InMemoryOption configures an InMemoryRecordStore.
type InMemoryOption func(*InMemoryRecordStore)

// WithRowLimit caps the rows returned per ListRows call; the newest rows
// are kept.
func WithRowLimit(limit int) InMemoryOption {
	return func(s *InMemoryRecordStore) {
		s.limit = limit
	}
}

// NewInMemoryRecordStore creates an empty in-memory store. Without
// WithRowLimit every row in the window is returned.
func NewInMemoryRecordStore(opts ...InMemoryOption) *InMemoryRecordStore {
	s := &InMemoryRecordStore{
		rows: make(map[string][]models.MetricRow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRows appends rows to a project.
func (s *InMemoryRecordStore) AddRows(ctx context.Context, projectID string, rows []models.MetricRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[projectID] = append(s.rows[projectID], rows...)
	return nil
}

// CountRows implements RowCounter.
func (s *InMemoryRecordStore) CountRows(ctx context.Context, projectID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows[projectID])), nil
}

// ListRows returns the project's rows inside the window, oldest first.
// When the window holds more rows than the limit, the oldest are dropped.
func (s *InMemoryRecordStore) ListRows(ctx context.Context, projectID string, from, to time.Time) ([]models.MetricRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.MetricRow, 0, len(s.rows[projectID]))
	for _, r := range s.rows[projectID] {
		if r.Timestamp.IsZero() || inWindow(r.Timestamp, from, to) {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return keepNewest(result, s.limit), nil
}
