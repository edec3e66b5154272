package storage

import (
	"context"
	"testing"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
)

func TestInMemoryRecordStoreWindow(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryRecordStore()

	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	err := s.AddRows(ctx, "p1", []models.MetricRow{
		{Impressions: 3, Timestamp: day(3)},
		{Impressions: 1, Timestamp: day(1)},
		{Impressions: 2, Timestamp: day(2)},
		{Impressions: 9},
	})
	if err != nil {
		t.Fatalf("AddRows: %v", err)
	}
	if err := s.AddRows(ctx, "p2", []models.MetricRow{{Impressions: 100, Timestamp: day(2)}}); err != nil {
		t.Fatalf("AddRows: %v", err)
	}

	all, _ := s.ListRows(ctx, "p1", time.Time{}, time.Time{})
	if len(all) != 4 {
		t.Fatalf("got %d rows, want 4", len(all))
	}
	if all[1].Impressions != 1 || all[3].Impressions != 3 {
		t.Errorf("rows not ordered by time: %+v", all)
	}

	window, _ := s.ListRows(ctx, "p1", day(2), day(3))
	var dated []models.MetricRow
	for _, r := range window {
		if !r.Timestamp.IsZero() {
			dated = append(dated, r)
		}
	}
	if len(dated) != 1 || dated[0].Impressions != 2 {
		t.Errorf("window rows = %+v, want only day 2", dated)
	}

	none, _ := s.ListRows(ctx, "missing", time.Time{}, time.Time{})
	if len(none) != 0 {
		t.Errorf("unknown project returned %d rows", len(none))
	}
}

func TestInMemoryRecordStoreLimitKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryRecordStore(WithRowLimit(3))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var rows []models.MetricRow
	for i := 5; i >= 1; i-- {
		rows = append(rows, models.MetricRow{Impressions: float64(i), Timestamp: base.Add(time.Duration(i) * time.Hour)})
	}
	rows = append(rows, models.MetricRow{Impressions: 99})
	if err := s.AddRows(ctx, "p1", rows); err != nil {
		t.Fatalf("AddRows: %v", err)
	}

	got, err := s.ListRows(ctx, "p1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	for i, want := range []float64{3, 4, 5} {
		if got[i].Impressions != want {
			t.Errorf("row %d impressions = %v, want %v", i, got[i].Impressions, want)
		}
	}

	n, err := s.CountRows(ctx, "p1")
	if err != nil || n != 6 {
		t.Errorf("CountRows = %d, %v; want 6", n, err)
	}
}

func TestReverseRowsRestoresAscendingOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// newest first, as the SQL stores read them
	rows := []models.MetricRow{
		{Impressions: 3, Timestamp: base.Add(3 * time.Hour)},
		{Impressions: 2, Timestamp: base.Add(2 * time.Hour)},
		{Impressions: 1, Timestamp: base.Add(time.Hour)},
		{Impressions: 0},
	}
	reverseRows(rows)
	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.Before(rows[i-1].Timestamp) {
			t.Fatalf("rows not ascending: %+v", rows)
		}
	}
	if rows[3].Impressions != 3 {
		t.Errorf("newest row should be last, got %+v", rows[3])
	}

	reverseRows(nil)
}

func TestInMemoryUsageLedger(t *testing.T) {
	ctx := context.Background()
	l := NewInMemoryUsageLedger()
	now := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_ = l.Record(ctx, "gemini-1.5-flash", 100, 50)
	_ = l.Record(ctx, "gemini-1.5-flash", 10, 5)
	_ = l.Record(ctx, "a-model", 1, 1)

	got, err := l.Daily(ctx, now)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if len(got) != 2 || got[0].Model != "a-model" {
		t.Fatalf("Daily = %+v", got)
	}
	g := got[1]
	if g.Requests != 2 || g.PromptTokens != 110 || g.CompletionTokens != 55 || g.TotalTokens != 165 {
		t.Errorf("usage = %+v", g)
	}

	other, _ := l.Daily(ctx, now.Add(2*time.Hour))
	if len(other) != 0 {
		t.Errorf("next day should be empty, got %+v", other)
	}
}

func TestDecodeTags(t *testing.T) {
	tags := decodeTags([]byte(`{"channel_name":"search","creative_id":42,"active":true,"nested":{"x":1}}`))
	if tags["channel_name"] != "search" || tags["creative_id"] != "42" || tags["active"] != "true" {
		t.Errorf("tags = %v", tags)
	}
	if _, ok := tags["nested"]; ok {
		t.Errorf("non-scalar tag kept")
	}
	if len(decodeTags(nil)) != 0 || len(decodeTags([]byte("not json"))) != 0 {
		t.Errorf("malformed tags should decode empty")
	}
}
