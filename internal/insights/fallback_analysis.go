package insights

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/radiusdt/campaign-insights/internal/analytics"
	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// outlookWindow is the number of trailing days the outlook trend covers.
const outlookWindow = 7

// AnalyzeFromKPIs builds an analysis from rules over the KPISet alone.
func AnalyzeFromKPIs(k models.KPISet) models.AnalysisResult {
	if !k.HasResults() {
		res := EnsureAnalysis(extract.Partial{Fields: map[string]any{
			"summary":       "No delivery data available for analysis",
			"strengths":     []any{"Solid base for growth"},
			"weaknesses":    []any{"Limited channel data"},
			"overall_score": 50.0,
			"source":        string(models.SourceBaseline),
			"confidence":    string(models.ConfidenceLow),
			"note":          "Analysis based on industry baseline; no project data was available",
		}})
		res.ConfidenceFactors = models.ConfidenceFactors{DataQuality: "low", Similarity: "unknown", MarketConditions: "average"}
		return res
	}

	b := k.Basic
	fields := map[string]any{
		"summary": fmt.Sprintf("Analysis of %.0f impressions, %.0f clicks and %.0f conversions across %d %s groups",
			b.Impressions, b.Clicks, b.Conversions, len(k.Advanced.ByDimension), dimensionLabel(k)),
		"strengths":       stringsToAny(kpiStrengths(k)),
		"weaknesses":      stringsToAny(kpiWeaknesses(k)),
		"overall_score":   kpiScore(b),
		"alerts":          stringsToAny(kpiAlerts(k)),
		"recommendations": hintRecommendations(analytics.OptimizationHints(k)),
		"predictions": map[string]any{
			"next_30_days": outlookText(k.Trends),
			"confidence":   "Medium, based on historical data",
			"key_metrics":  []any{"ROI", "Conversions", "CTR"},
		},
		"source":     string(models.SourceStatistical),
		"confidence": string(models.ConfidenceMedium),
		"note":       fmt.Sprintf("Rule-based analysis over %d days of data", len(k.Trends.Daily)),
	}
	return EnsureAnalysis(extract.Partial{Fields: fields})
}

func dimensionLabel(k models.KPISet) string {
	if k.Advanced.DimensionKey == "" {
		return "dimension"
	}
	return k.Advanced.DimensionKey
}

func kpiStrengths(k models.KPISet) []string {
	var out []string
	if k.Basic.CTR > 3 {
		out = append(out, "CTR above the industry average")
	}
	if k.Basic.ROI > 200 {
		out = append(out, "Excellent ROI")
	}
	if k.Basic.ConversionRate > 5 {
		out = append(out, "Strong conversion rate")
	}
	if len(out) == 0 {
		out = append(out, "Solid base for growth")
	}
	return out
}

func kpiWeaknesses(k models.KPISet) []string {
	var out []string
	if k.Basic.CTR < 1 {
		out = append(out, "CTR needs optimization")
	}
	if k.Basic.CPA > 50 {
		out = append(out, "High cost per acquisition")
	}
	if len(k.Advanced.ByDimension) == 0 {
		out = append(out, "Limited channel data")
	}
	if len(out) == 0 {
		out = append(out, "Optimization opportunities identified")
	}
	return out
}

func kpiScore(b models.BasicKPI) float64 {
	score := 50.0
	if b.CTR > 2 {
		score += 10
	}
	if b.ROI > 150 {
		score += 20
	}
	if b.ConversionRate > 3 {
		score += 10
	}
	if b.CPA > 0 && b.CPA < 30 {
		score += 10
	}
	return min(score, 100)
}

func kpiAlerts(k models.KPISet) []string {
	var out []string
	if k.Basic.ROI < 0 {
		out = append(out, fmt.Sprintf("Campaigns are losing money (ROI %.2f%%)", k.Basic.ROI))
	}
	if k.Basic.Clicks > 0 && k.Basic.Conversions == 0 {
		out = append(out, "Clicks are not converting")
	}
	if u := k.Advanced.BudgetEfficiency.UtilizationPct; u > 100 {
		out = append(out, fmt.Sprintf("Spend exceeds the approved budget (%.2f%% utilized)", u))
	}
	return out
}

func hintRecommendations(hints []analytics.Hint) []any {
	return lo.Map(hints, func(h analytics.Hint, _ int) any {
		impact := "Medium"
		if h.Priority == "high" {
			impact = "High"
		}
		action := h.Message
		if len(h.Actions) > 0 {
			action = h.Actions[0]
		}
		return map[string]any{
			"action":               action,
			"impact":               impact,
			"effort":               "Medium",
			"timeline":             "2-3 weeks",
			"expected_improvement": h.Message,
		}
	})
}

func outlookText(series models.TrendSeries) string {
	parts := []string{
		"CTR " + analytics.Direction(series, outlookWindow, func(b models.BasicKPI) float64 { return b.CTR }),
		"conversions " + analytics.Direction(series, outlookWindow, func(b models.BasicKPI) float64 { return b.Conversions }),
		"cost " + analytics.Direction(series, outlookWindow, func(b models.BasicKPI) float64 { return b.Cost }),
	}
	return "Last 7 days: " + strings.Join(parts, ", ")
}

func stringsToAny(ss []string) []any {
	return lo.Map(ss, func(s string, _ int) any { return s })
}
