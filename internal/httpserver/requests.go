package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// AggregateRequest carries raw rows to aggregate.
type AggregateRequest struct {
	Rows    []models.MetricRow `json:"rows" validate:"max=100000"`
	GroupBy string             `json:"group_by" validate:"omitempty,max=64"`
}

// IngestRequest appends rows to a project.
type IngestRequest struct {
	Rows []models.MetricRow `json:"rows" validate:"required,min=1,max=100000"`
}

// NormalizeRequest is generative output plus the inputs its fallbacks need.
type NormalizeRequest struct {
	Content    json.RawMessage      `json:"content"`
	Campaign   models.CampaignInput `json:"campaign"`
	Historical []models.KPISet      `json:"historical" validate:"max=100"`
	KPIs       models.KPISet        `json:"kpis"`
	Channels   []string             `json:"channels" validate:"max=64,dive,max=64"`
}

// PredictRequest describes the campaign to forecast.
type PredictRequest struct {
	Campaign models.CampaignInput `json:"campaign"`
}

// AnalyzeRequest selects the window and business objective of an analysis.
type AnalyzeRequest struct {
	WindowDays int    `json:"window_days" validate:"gte=0,lte=3650"`
	Objective  string `json:"objective" validate:"omitempty,max=512"`
}

// OptimizeRequest carries the budget to split.
type OptimizeRequest struct {
	Budget float64 `json:"budget" validate:"gt=0"`
}

// NormalizeResponse wraps a normalized result with its generation time.
type NormalizeResponse struct {
	Kind        extract.Kind `json:"kind"`
	Result      any          `json:"result"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// decodeContent maps the raw content field onto the Content union: an
// object is structured, a string is raw text, anything else is absent.
func decodeContent(raw json.RawMessage) (extract.Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return extract.Absent{}, nil
	}

	switch trimmed[0] {
	case '{':
		var m map[string]any
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("failed to decode content object: %w", err)
		}
		return extract.Structured{Value: m}, nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("failed to decode content text: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return extract.Absent{}, nil
		}
		return extract.RawText(s), nil
	}
	return extract.Absent{}, nil
}

// parseTime accepts RFC 3339 timestamps and plain dates. Empty is the zero
// time, meaning unbounded.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
