package models

import "strings"

// Source identifies which tier produced a canonical result.
type Source string

const (
	SourceGenerative   Source = "generative"
	SourceTextAnalysis Source = "text_analysis"
	SourceStatistical  Source = "statistical_model"
	SourceBaseline     Source = "industry_baseline"
	SourceBalanced     Source = "balanced_model"
)

// Confidence is a coarse confidence level.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence accepts English and Portuguese level names.
func ParseConfidence(s string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "alta", "alto":
		return ConfidenceHigh, true
	case "medium", "média", "media", "médio", "medio":
		return ConfidenceMedium, true
	case "low", "baixa", "baixo":
		return ConfidenceLow, true
	}
	return "", false
}

// ConfidenceFactors qualifies a result's confidence.
type ConfidenceFactors struct {
	DataQuality      string `json:"data_quality"`
	Similarity       string `json:"similarity"`
	MarketConditions string `json:"market_conditions"`
}

func (f ConfidenceFactors) fields() map[string]any {
	return map[string]any{
		"data_quality":      f.DataQuality,
		"similarity":        f.Similarity,
		"market_conditions": f.MarketConditions,
	}
}

// PredictionMetrics are forecast values. CTR and ConversionRate are
// fractions, ROI is a percentage.
type PredictionMetrics struct {
	CTR              float64 `json:"ctr"`
	ConversionRate   float64 `json:"conversion_rate"`
	ROI              float64 `json:"roi"`
	CPA              float64 `json:"cpa"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
}

// PredictionResult is the canonical campaign forecast.
type PredictionResult struct {
	Predictions       PredictionMetrics `json:"predictions"`
	Recommendations   []string          `json:"recommendations"`
	ConfidenceFactors ConfidenceFactors `json:"confidence_factors"`
	Source            Source            `json:"source"`
	Confidence        Confidence        `json:"confidence"`
	Note              string            `json:"note"`
}

// Fields returns the result in its loosely-typed wire shape.
func (p PredictionResult) Fields() map[string]any {
	return map[string]any{
		"predictions": map[string]any{
			"ctr":               p.Predictions.CTR,
			"conversion_rate":   p.Predictions.ConversionRate,
			"roi":               p.Predictions.ROI,
			"cpa":               p.Predictions.CPA,
			"estimated_revenue": p.Predictions.EstimatedRevenue,
		},
		"recommendations":    stringsToAny(p.Recommendations),
		"confidence_factors": p.ConfidenceFactors.fields(),
		"source":             string(p.Source),
		"confidence":         string(p.Confidence),
		"note":               p.Note,
	}
}

// Recommendation is one structured action item.
type Recommendation struct {
	Action              string `json:"action"`
	Impact              string `json:"impact"`
	Effort              string `json:"effort"`
	Timeline            string `json:"timeline"`
	ExpectedImprovement string `json:"expected_improvement"`
}

// PerformanceAnalysis is the diagnostic part of an analysis.
type PerformanceAnalysis struct {
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Score      float64  `json:"overall_score"`
	Alerts     []string `json:"alerts"`
}

// Outlook is the forward-looking part of an analysis.
type Outlook struct {
	Next30Days string   `json:"next_30_days"`
	Confidence string   `json:"confidence"`
	KeyMetrics []string `json:"key_metrics"`
}

// AnalysisResult is the canonical performance analysis.
type AnalysisResult struct {
	Performance       PerformanceAnalysis `json:"performance_analysis"`
	StrategicInsights []string            `json:"strategic_insights"`
	Recommendations   []Recommendation    `json:"recommendations"`
	Outlook           Outlook             `json:"predictions"`
	ConfidenceFactors ConfidenceFactors   `json:"confidence_factors"`
	Source            Source              `json:"source"`
	Confidence        Confidence          `json:"confidence"`
	Note              string              `json:"note"`
}

// Fields returns the result in its loosely-typed wire shape.
func (a AnalysisResult) Fields() map[string]any {
	recs := make([]any, 0, len(a.Recommendations))
	for _, r := range a.Recommendations {
		recs = append(recs, map[string]any{
			"action":               r.Action,
			"impact":               r.Impact,
			"effort":               r.Effort,
			"timeline":             r.Timeline,
			"expected_improvement": r.ExpectedImprovement,
		})
	}
	return map[string]any{
		"performance_analysis": map[string]any{
			"summary":       a.Performance.Summary,
			"strengths":     stringsToAny(a.Performance.Strengths),
			"weaknesses":    stringsToAny(a.Performance.Weaknesses),
			"overall_score": a.Performance.Score,
			"alerts":        stringsToAny(a.Performance.Alerts),
		},
		"strategic_insights": stringsToAny(a.StrategicInsights),
		"recommendations":    recs,
		"predictions": map[string]any{
			"next_30_days": a.Outlook.Next30Days,
			"confidence":   a.Outlook.Confidence,
			"key_metrics":  stringsToAny(a.Outlook.KeyMetrics),
		},
		"confidence_factors": a.ConfidenceFactors.fields(),
		"source":             string(a.Source),
		"confidence":         string(a.Confidence),
		"note":               a.Note,
	}
}

// BudgetAllocation is a per-channel split of a budget, in percent.
type BudgetAllocation struct {
	Allocation             map[string]float64 `json:"allocation"`
	ExpectedROIImprovement float64            `json:"expected_roi_improvement"`
	Rationale              string             `json:"rationale"`
	Source                 Source             `json:"source"`
	Confidence             Confidence         `json:"confidence"`
	Note                   string             `json:"note"`
}

// Fields returns the allocation in its loosely-typed wire shape.
func (b BudgetAllocation) Fields() map[string]any {
	alloc := make(map[string]any, len(b.Allocation))
	for k, v := range b.Allocation {
		alloc[k] = v
	}
	return map[string]any{
		"allocation":               alloc,
		"expected_roi_improvement": b.ExpectedROIImprovement,
		"rationale":                b.Rationale,
		"source":                   string(b.Source),
		"confidence":               string(b.Confidence),
		"note":                     b.Note,
	}
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
