package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMetricRowFromRecordCoercesValues(t *testing.T) {
	row := MetricRowFromRecord(map[string]any{
		"impressions":     "1200",
		"clicks":          float64(36),
		"conversions":     "n/a",
		"media_cost_usd":  "45.5",
		"approved_budget": -10.0,
		"channel_name":    "search",
		"creative_id":     float64(7),
		"time":            "2024-03-05",
	})

	if row.Impressions != 1200 || row.Clicks != 36 {
		t.Fatalf("unexpected volumes: %+v", row)
	}
	if row.Conversions != 0 {
		t.Fatalf("malformed conversions should be 0, got %v", row.Conversions)
	}
	if row.Cost != 45.5 {
		t.Fatalf("cost alias not applied: %v", row.Cost)
	}
	if row.ApprovedBudget != 0 {
		t.Fatalf("negative budget should floor at 0, got %v", row.ApprovedBudget)
	}
	if row.Revenue != nil {
		t.Fatalf("revenue should be absent")
	}
	if row.Tag("channel_name") != "search" || row.Tag("creative_id") != "7" {
		t.Fatalf("unexpected tags: %v", row.Tags)
	}
	if row.Tag("campaign_id") != UnknownDimension {
		t.Fatalf("missing tag should be %q", UnknownDimension)
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !row.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", row.Timestamp, want)
	}
}

func TestMetricRowUnmarshalJSON(t *testing.T) {
	var rows []MetricRow
	data := `[{"impressions":100,"clicks":"3","revenue":"250","dimension_tags":{"channel_name":"social"},"timestamp":"2024-01-02T10:00:00Z"},{"clicks":null}]`
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Revenue == nil || *rows[0].Revenue != 250 {
		t.Fatalf("explicit revenue not decoded: %+v", rows[0])
	}
	if rows[0].Tag("channel_name") != "social" {
		t.Fatalf("dimension_tags not merged: %v", rows[0].Tags)
	}
	if rows[1].Clicks != 0 || !rows[1].Timestamp.IsZero() {
		t.Fatalf("empty row should be zero: %+v", rows[1])
	}
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{42, 42, true},
		{"3.5%", 3.5, true},
		{" 12 ", 12, true},
		{json.Number("0.04"), 0.04, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := ToFloat(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ToFloat(%#v) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseConfidence(t *testing.T) {
	if c, ok := ParseConfidence("Alta"); !ok || c != ConfidenceHigh {
		t.Fatalf("got %v %v", c, ok)
	}
	if _, ok := ParseConfidence("78%"); ok {
		t.Fatalf("free-form confidence should be rejected")
	}
}
