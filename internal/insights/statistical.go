package insights

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/radiusdt/campaign-insights/internal/models"
)

var statisticalRecommendations = []string{
	"Monitor performance closely during the first 48 hours",
	"Adjust bids based on the click-through rate actually observed",
	"Test different audiences and creatives",
}

// StatisticalModel forecasts a campaign from the means of historical
// KPISets, scaled by the new campaign's budget.
type StatisticalModel struct {
	params ModelParams
}

// NewStatisticalModel creates a model with the given parameters.
func NewStatisticalModel(params ModelParams) *StatisticalModel {
	return &StatisticalModel{params: params}
}

// Predict returns false when no historical set carries usable results.
func (m *StatisticalModel) Predict(campaign models.CampaignInput, historical []models.KPISet) (models.PredictionResult, bool) {
	usable := lo.Filter(historical, func(k models.KPISet, _ int) bool { return k.HasResults() })
	if len(usable) == 0 {
		return models.PredictionResult{}, false
	}
	campaign = campaign.WithDefaults()
	p := m.params

	n := float64(len(usable))
	// KPISet rates are percentages; predictions use fractions for CTR and
	// conversion rate.
	meanCTR := lo.SumBy(usable, func(k models.KPISet) float64 { return k.Basic.CTR }) / n / 100
	meanCR := lo.SumBy(usable, func(k models.KPISet) float64 { return k.Basic.ConversionRate }) / n / 100
	meanROI := lo.SumBy(usable, func(k models.KPISet) float64 { return k.Basic.ROI }) / n

	budgetFactor := campaign.Budget / p.BudgetScale
	ctr := p.CTRRange.Clamp(meanCTR * (p.CTRBase + budgetFactor*p.CTRBudgetWeight))
	cr := p.ConversionRateRange.Clamp(meanCR)
	roi := p.ROIRange.Clamp(meanROI * (p.ROIBase + budgetFactor*p.ROIBudgetWeight))

	conversions := campaign.Impressions * ctr * cr
	cpa := campaign.Budget
	if conversions > 0 {
		cpa = campaign.Budget / conversions
	}

	confidence := models.ConfidenceLow
	if len(usable) >= p.MediumConfidenceSamples {
		confidence = models.ConfidenceMedium
	}
	quality := "medium"
	if len(usable) > p.HighQualitySamples {
		quality = "high"
	}

	return models.PredictionResult{
		Predictions: models.PredictionMetrics{
			CTR:              roundTo(ctr, 4),
			ConversionRate:   roundTo(cr, 4),
			ROI:              roundTo(roi, 2),
			CPA:              roundTo(p.CPARange.Clamp(cpa), 2),
			EstimatedRevenue: roundTo(campaign.Budget*roi/100+campaign.Budget, 2),
		},
		Recommendations: append([]string(nil), statisticalRecommendations...),
		ConfidenceFactors: models.ConfidenceFactors{
			DataQuality:      quality,
			Similarity:       "medium",
			MarketConditions: "stable",
		},
		Source:     models.SourceStatistical,
		Confidence: confidence,
		Note:       fmt.Sprintf("Prediction based on %d historical campaigns", len(usable)),
	}, true
}
