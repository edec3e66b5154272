package insights

import (
	"strings"

	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// Analysis defaults used when a field cannot be resolved.
const (
	DefaultAnalysisScore      = 65.0
	DefaultAnalysisSummary    = "Project performance analysis"
	DefaultOutlookNext30Days  = "Moderate growth expected once the optimizations are applied"
	DefaultOutlookConfidence  = "Medium, based on historical data"
	defaultImpact             = "Medium"
	defaultEffort             = "Medium"
	defaultTimeline           = "2-3 weeks"
	defaultImprovementForText = "Significant improvement"
	defaultImprovement        = "Expected improvement"
	defaultAction             = "Recommended action"
)

var (
	DefaultStrengths  = []string{"High ROI indicates efficient campaigns"}
	DefaultWeaknesses = []string{"Conversion volume needs to grow"}
	DefaultKeyMetrics = []string{"ROI", "Conversions", "CTR"}

	DefaultStrategicInsights = []string{
		"Focus on improving the conversion rate through landing page optimization",
		"Increase budget to expand the reach of the best campaigns",
		"Use remarketing strategies to improve ROI",
	}

	DefaultAnalysisRecommendations = []models.Recommendation{
		{
			Action:              "Optimize campaigns to improve the conversion rate",
			Impact:              "High",
			Effort:              "Medium",
			Timeline:            "2-3 weeks",
			ExpectedImprovement: "Conversions +25-40%",
		},
		{
			Action:              "Increase investment in the best performing channels",
			Impact:              "High",
			Effort:              "Low",
			Timeline:            "1-2 weeks",
			ExpectedImprovement: "ROI +15-25%",
		},
		{
			Action:              "Run A/B tests on creatives and landing pages",
			Impact:              "Medium",
			Effort:              "Medium",
			Timeline:            "3-4 weeks",
			ExpectedImprovement: "CTR +20-30%",
		},
	}
)

// EnsureAnalysis turns any partial into a fully-populated analysis.
func EnsureAnalysis(partial extract.Partial) models.AnalysisResult {
	if partial.Fields == nil {
		partial.Fields = map[string]any{}
	}
	p := extract.NewPartial(extract.Normalize(partial.Fields, extract.KindAnalysis), partial.Tier)

	score := ResolveMetric(p.Fields["overall_score"], p.Fields["score"], DefaultAnalysisScore)
	score = Range{Min: 0, Max: 100}.Clamp(score)

	insights := textList(firstPresent(p, "strategic_insights", "insights", "insights_estrategicos"))
	if len(insights) == 0 {
		insights = append([]string(nil), DefaultStrategicInsights...)
	}

	recs := ensureRecommendations(firstPresent(p, "recommendations", "recomendacoes"))
	if len(recs) == 0 {
		recs = append([]models.Recommendation(nil), DefaultAnalysisRecommendations...)
	}

	return models.AnalysisResult{
		Performance: models.PerformanceAnalysis{
			Summary:    stringField(p.Fields, DefaultAnalysisSummary, "summary", "resumo"),
			Strengths:  listOr(firstPresent(p, "strengths", "pontos_fortes"), DefaultStrengths),
			Weaknesses: listOr(firstPresent(p, "weaknesses", "pontos_fracos"), DefaultWeaknesses),
			Score:      score,
			Alerts:     listOr(firstPresent(p, "alerts", "alertas", "alertas_criticos"), []string{}),
		},
		StrategicInsights: insights,
		Recommendations:   recs,
		Outlook:           ensureOutlook(p),
		ConfidenceFactors: ensureFactors(p),
		Source:            ensureSource(p),
		Confidence:        ensureConfidence(p),
		Note:              stringField(p.Fields, DefaultAnalysisNote, "note", "observacao"),
	}
}

func listOr(v any, def []string) []string {
	if l, ok := stringList(v); ok && len(l) > 0 {
		return l
	}
	return append([]string{}, def...)
}

// ensureRecommendations maps sequence items to structured recommendations
// and splits a text block into one recommendation per line.
func ensureRecommendations(v any) []models.Recommendation {
	fromText := func(s string) models.Recommendation {
		return models.Recommendation{
			Action:              s,
			Impact:              defaultImpact,
			Effort:              defaultEffort,
			Timeline:            defaultTimeline,
			ExpectedImprovement: defaultImprovementForText,
		}
	}

	var out []models.Recommendation
	switch t := v.(type) {
	case string:
		for _, line := range splitText(t) {
			out = append(out, fromText(line))
		}
	case []string:
		for _, s := range keepMeaningful(t) {
			out = append(out, fromText(s))
		}
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case string:
				if s := strings.TrimSpace(it); meaningful(s) {
					out = append(out, fromText(s))
				}
			case map[string]any:
				out = append(out, models.Recommendation{
					Action:              stringField(it, defaultAction, "action", "title", "acao"),
					Impact:              stringField(it, defaultImpact, "impact", "priority", "impacto"),
					Effort:              stringField(it, defaultEffort, "effort", "dificuldade", "esforco"),
					Timeline:            stringField(it, defaultTimeline, "timeline", "prazo"),
					ExpectedImprovement: stringField(it, defaultImprovement, "expected_improvement", "roi_esperado", "melhoria_esperada"),
				})
			}
		}
	}
	return out
}

func ensureOutlook(p extract.Partial) models.Outlook {
	o := models.Outlook{
		Next30Days: DefaultOutlookNext30Days,
		Confidence: DefaultOutlookConfidence,
		KeyMetrics: append([]string{}, DefaultKeyMetrics...),
	}
	m, ok := p.Map("predictions", "outlook", "previsoes")
	if !ok {
		return o
	}
	o.Next30Days = stringField(m, o.Next30Days, "next_30_days", "proximos_30_dias")
	o.Confidence = stringField(m, o.Confidence, "confidence", "confianca")
	o.KeyMetrics = listOr(m["key_metrics"], DefaultKeyMetrics)
	return o
}
