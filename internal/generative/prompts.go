package generative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// PredictionPrompt asks for a campaign forecast as a JSON object.
func PredictionPrompt(campaign models.CampaignInput, historical []models.KPISet) string {
	var b strings.Builder
	b.WriteString("You are a digital marketing analyst. Forecast the performance of a new campaign.\n\n")
	b.WriteString("NEW CAMPAIGN:\n")
	writeJSON(&b, campaign)
	fmt.Fprintf(&b, "\nHISTORICAL CAMPAIGNS (%d):\n", len(historical))
	basics := make([]models.BasicKPI, 0, len(historical))
	for _, k := range historical {
		basics = append(basics, k.Basic)
	}
	writeJSON(&b, basics)
	b.WriteString(`
Respond with a single JSON object:
{
  "predictions": {"ctr": <fraction>, "conversion_rate": <fraction>, "roi": <percent>, "cpa": <currency>, "estimated_revenue": <currency>},
  "recommendations": [<string>, ...],
  "confidence_factors": {"data_quality": "high|medium|low", "similarity": "high|medium|low", "market_conditions": <string>},
  "confidence": "high|medium|low"
}
`)
	return b.String()
}

// AnalysisPrompt asks for a performance analysis of a project's KPIs.
func AnalysisPrompt(kpis models.KPISet, objective string) string {
	var b strings.Builder
	b.WriteString("You are a senior performance marketing analyst. Analyze the project below.\n\n")
	if objective = strings.TrimSpace(objective); objective != "" {
		fmt.Fprintf(&b, "BUSINESS OBJECTIVE: %s\n\n", objective)
	}
	b.WriteString("KPIS:\n")
	writeJSON(&b, kpis)
	b.WriteString(`
Respond with a single JSON object:
{
  "performance_analysis": {"summary": <string>, "strengths": [<string>], "weaknesses": [<string>], "overall_score": <0-100>, "alerts": [<string>]},
  "strategic_insights": [<string>],
  "recommendations": [{"action": <string>, "impact": <string>, "effort": <string>, "timeline": <string>, "expected_improvement": <string>}],
  "predictions": {"next_30_days": <string>, "confidence": <string>, "key_metrics": [<string>]}
}
`)
	return b.String()
}

// AllocationPrompt asks for a percentage split of budget across channels.
func AllocationPrompt(dims []models.DimensionKPI, budget float64) string {
	var b strings.Builder
	b.WriteString("Suggest an optimized budget allocation considering historical ROI per channel, ")
	b.WriteString("each channel's capacity to scale and the business objectives.\n\n")
	fmt.Fprintf(&b, "TOTAL BUDGET: %.2f\n\nCHANNEL PERFORMANCE:\n", budget)
	writeJSON(&b, dims)
	b.WriteString(`
Respond with a single JSON object:
{"allocation": {"<channel>": <percent>, ...}, "expected_roi_improvement": <percent>, "rationale": <string>}
`)
	return b.String()
}

func writeJSON(b *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b.WriteString("{}\n")
		return
	}
	b.Write(data)
	b.WriteByte('\n')
}
