package insights

import "github.com/radiusdt/campaign-insights/internal/models"

// Range is an inclusive clamp interval.
type Range struct {
	Min float64
	Max float64
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	switch {
	case v < r.Min:
		return r.Min
	case v > r.Max:
		return r.Max
	}
	return v
}

// ModelParams are the constants of the statistical and baseline models.
type ModelParams struct {
	// BudgetScale turns a budget into the budget factor (budget / BudgetScale).
	BudgetScale float64

	// adjusted = mean * (Base + budgetFactor * BudgetWeight)
	CTRBase         float64
	CTRBudgetWeight float64
	ROIBase         float64
	ROIBudgetWeight float64

	CTRRange            Range
	ConversionRateRange Range
	ROIRange            Range
	CPARange            Range

	// MediumConfidenceSamples is the sample count at which a statistical
	// prediction is reported with medium confidence.
	MediumConfidenceSamples int
	// HighQualitySamples is the sample count above which data quality is high.
	HighQualitySamples int

	// Baseline holds industry-average metrics; EstimatedRevenue is unused.
	Baseline models.PredictionMetrics
}

// DefaultModelParams returns the documented model constants.
func DefaultModelParams() ModelParams {
	return ModelParams{
		BudgetScale:             1000,
		CTRBase:                 0.9,
		CTRBudgetWeight:         0.2,
		ROIBase:                 0.8,
		ROIBudgetWeight:         0.4,
		CTRRange:                Range{Min: 0.01, Max: 0.15},
		ConversionRateRange:     Range{Min: 0.005, Max: 0.1},
		ROIRange:                Range{Min: 50, Max: 500},
		CPARange:                Range{Min: 10, Max: 200},
		MediumConfidenceSamples: 5,
		HighQualitySamples:      10,
		Baseline: models.PredictionMetrics{
			CTR:            0.035,
			ConversionRate: 0.025,
			ROI:            180,
			CPA:            40,
		},
	}
}
