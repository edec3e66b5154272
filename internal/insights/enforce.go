package insights

import (
	"strings"

	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// Prediction defaults used when a field cannot be resolved.
const (
	DefaultPredictionCTR            = 0.035
	DefaultPredictionConversionRate = 0.025
	DefaultPredictionROI            = 180.0
	DefaultPredictionCPA            = 40.0
	DefaultPredictionRevenue        = 2800.0

	DefaultPredictionNote = "Prediction based on the supplied campaign data and market patterns"
	DefaultAnalysisNote   = "Analysis based on the supplied project data"
)

// DefaultPredictionRecommendations apply when a prediction carries none.
var DefaultPredictionRecommendations = []string{
	"Run A/B tests on creatives to lift the click-through rate",
	"Refine audience targeting to concentrate spend on high-intent segments",
	"Monitor daily performance and rebalance budget toward the best channels",
	"Optimize landing pages to raise the conversion rate",
}

// DefaultConfidenceFactors fill missing confidence factor keys.
var DefaultConfidenceFactors = models.ConfidenceFactors{
	DataQuality:      "medium",
	Similarity:       "medium",
	MarketConditions: "stable",
}

// EnsurePrediction turns any partial into a fully-populated prediction.
// It never fails, and EnsurePrediction(partial of its own output) returns
// the same result.
func EnsurePrediction(partial extract.Partial) models.PredictionResult {
	if partial.Fields == nil {
		partial.Fields = map[string]any{}
	}
	p := extract.NewPartial(extract.Normalize(partial.Fields, extract.KindPrediction), partial.Tier)

	recs := textList(firstPresent(p, "recommendations", "recomendacoes_otimizacao", "recomendacoes"))
	if len(recs) == 0 {
		recs = append([]string(nil), DefaultPredictionRecommendations...)
	}

	return models.PredictionResult{
		Predictions: models.PredictionMetrics{
			CTR:              resolveField(p, "ctr", "ctr_esperado", DefaultPredictionCTR),
			ConversionRate:   resolveField(p, "conversion_rate", "taxa_conversao", DefaultPredictionConversionRate),
			ROI:              resolveField(p, "roi", "roi_estimado", DefaultPredictionROI),
			CPA:              resolveField(p, "cpa", "custo_por_aquisicao", DefaultPredictionCPA),
			EstimatedRevenue: resolveField(p, "estimated_revenue", "receita_estimada", DefaultPredictionRevenue),
		},
		Recommendations:   recs,
		ConfidenceFactors: ensureFactors(p),
		Source:            ensureSource(p),
		Confidence:        ensureConfidence(p),
		Note:              stringField(p.Fields, DefaultPredictionNote, "note", "observacao"),
	}
}

func firstPresent(p extract.Partial, keys ...string) any {
	v, _ := p.Get(keys...)
	return v
}

func ensureFactors(p extract.Partial) models.ConfidenceFactors {
	f := DefaultConfidenceFactors
	m, ok := p.Map("confidence_factors", "fatores_confianca")
	if !ok {
		return f
	}
	f.DataQuality = stringField(m, f.DataQuality, "data_quality", "qualidade_dados")
	f.Similarity = stringField(m, f.Similarity, "similarity", "similaridade")
	f.MarketConditions = stringField(m, f.MarketConditions, "market_conditions", "condicoes_mercado")
	return f
}

func ensureSource(p extract.Partial) models.Source {
	if s, ok := p.String("source", "fonte"); ok && strings.TrimSpace(s) != "" {
		return models.Source(strings.TrimSpace(s))
	}
	return models.SourceGenerative
}

func ensureConfidence(p extract.Partial) models.Confidence {
	if s, ok := p.String("confidence", "nivel_confianca"); ok {
		if c, ok := models.ParseConfidence(s); ok {
			return c
		}
	}
	return models.ConfidenceMedium
}
