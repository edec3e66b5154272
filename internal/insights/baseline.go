package insights

import "github.com/radiusdt/campaign-insights/internal/models"

var baselineRecommendations = []string{
	"Set up complete conversion tracking",
	"Start with a conservative budget and scale gradually",
	"Test multiple segmentation strategies",
	"Monitor metrics daily for quick optimizations",
	"Collect campaign-specific data to improve future predictions",
}

// BaselineModel forecasts a campaign from fixed industry averages. It
// always succeeds.
type BaselineModel struct {
	params ModelParams
}

// NewBaselineModel creates a model with the given parameters.
func NewBaselineModel(params ModelParams) *BaselineModel {
	return &BaselineModel{params: params}
}

// Predict returns the industry-baseline forecast for campaign.
func (m *BaselineModel) Predict(campaign models.CampaignInput) models.PredictionResult {
	campaign = campaign.WithDefaults()
	b := m.params.Baseline
	b.EstimatedRevenue = roundTo(campaign.Budget*b.ROI/100+campaign.Budget, 2)

	return models.PredictionResult{
		Predictions:     b,
		Recommendations: append([]string(nil), baselineRecommendations...),
		ConfidenceFactors: models.ConfidenceFactors{
			DataQuality:      "low",
			Similarity:       "unknown",
			MarketConditions: "average",
		},
		Source:     models.SourceBaseline,
		Confidence: models.ConfidenceLow,
		Note:       "Prediction based on industry averages. Collect campaign data to improve accuracy.",
	}
}
