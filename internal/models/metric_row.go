package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// UnknownDimension is the group name for rows missing a dimension tag.
const UnknownDimension = "Unknown"

// MetricRow is one record of advertising delivery data.
type MetricRow struct {
	Impressions    float64           `json:"impressions"`
	Clicks         float64           `json:"clicks"`
	Conversions    float64           `json:"conversions"`
	Cost           float64           `json:"cost"`
	Revenue        *float64          `json:"revenue,omitempty"`
	ApprovedBudget float64           `json:"approved_budget"`
	Tags           map[string]string `json:"dimension_tags,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Tag returns the dimension value for key, or UnknownDimension.
func (r MetricRow) Tag(key string) string {
	if v := strings.TrimSpace(r.Tags[key]); v != "" {
		return v
	}
	return UnknownDimension
}

// field aliases accepted when decoding loosely-typed records
var (
	impressionKeys = []string{"impressions", "imps"}
	clickKeys      = []string{"clicks"}
	conversionKeys = []string{"conversions"}
	costKeys       = []string{"cost", "media_cost_usd", "spend"}
	revenueKeys    = []string{"revenue", "revenue_estimate"}
	budgetKeys     = []string{"approved_budget", "budget"}
	timeKeys       = []string{"timestamp", "time", "date"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MetricRowFromRecord builds a MetricRow from a loosely-typed record.
// Numeric fields that are missing, malformed or negative become 0; every
// remaining scalar field is kept as a dimension tag.
func MetricRowFromRecord(rec map[string]any) MetricRow {
	row := MetricRow{Tags: make(map[string]string)}
	consumed := make(map[string]bool)

	pick := func(keys []string) (any, bool) {
		for _, k := range keys {
			consumed[k] = true
		}
		for _, k := range keys {
			if v, ok := rec[k]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}

	if v, ok := pick(impressionKeys); ok {
		row.Impressions = nonNegative(v)
	}
	if v, ok := pick(clickKeys); ok {
		row.Clicks = nonNegative(v)
	}
	if v, ok := pick(conversionKeys); ok {
		row.Conversions = nonNegative(v)
	}
	if v, ok := pick(costKeys); ok {
		row.Cost = nonNegative(v)
	}
	if v, ok := pick(revenueKeys); ok {
		if f, ok := ToFloat(v); ok {
			if f < 0 {
				f = 0
			}
			row.Revenue = &f
		}
	}
	if v, ok := pick(budgetKeys); ok {
		row.ApprovedBudget = nonNegative(v)
	}
	if v, ok := pick(timeKeys); ok {
		row.Timestamp = parseTimestamp(v)
	}

	if tags, ok := rec["dimension_tags"].(map[string]any); ok {
		row.Tags = TagsFromMap(tags)
	}
	consumed["dimension_tags"] = true

	for k, v := range rec {
		if consumed[k] {
			continue
		}
		if s, ok := scalarString(v); ok {
			row.Tags[k] = s
		}
	}
	return row
}

// TagsFromMap keeps the scalar values of m as dimension tags.
func TagsFromMap(m map[string]any) map[string]string {
	tags := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := scalarString(v); ok {
			tags[k] = s
		}
	}
	return tags
}

// UnmarshalJSON decodes a row tolerantly, never failing on field values.
func (r *MetricRow) UnmarshalJSON(data []byte) error {
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*r = MetricRowFromRecord(rec)
	return nil
}

func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC()
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
	default:
		if secs, ok := ToFloat(v); ok && secs > 0 {
			return time.Unix(int64(secs), 0).UTC()
		}
	}
	return time.Time{}
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case nil:
		return "", false
	default:
		if f, ok := ToFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
	}
	return "", false
}
