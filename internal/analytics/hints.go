package analytics

import (
	"fmt"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// Hint is a rule-derived optimization suggestion.
type Hint struct {
	Type     string   `json:"type"`
	Priority string   `json:"priority"`
	Message  string   `json:"message"`
	Actions  []string `json:"actions"`
}

// Thresholds below which a rate is considered weak, in percent / currency.
const (
	LowCTRThreshold            = 2.0
	LowConversionRateThreshold = 3.0
	HighCPAThreshold           = 50.0
)

// OptimizationHints applies the rule table to a KPISet. An empty set yields
// no hints.
func OptimizationHints(k models.KPISet) []Hint {
	if !k.HasResults() {
		return nil
	}

	var hints []Hint
	if k.Basic.CTR < LowCTRThreshold {
		hints = append(hints, Hint{
			Type:     "ctr_optimization",
			Priority: "high",
			Message:  fmt.Sprintf("CTR of %.2f%% is below the %.0f%% industry average; refresh creatives and targeting.", k.Basic.CTR, LowCTRThreshold),
			Actions: []string{
				"Test alternative creatives",
				"Refine audience segmentation",
				"Rewrite copy and call-to-action",
			},
		})
	}
	if k.Basic.ConversionRate < LowConversionRateThreshold {
		hints = append(hints, Hint{
			Type:     "conversion_optimization",
			Priority: "high",
			Message:  "Conversion rate has room to improve.",
			Actions: []string{
				"Optimize landing pages",
				"Simplify the conversion funnel",
				"Set up remarketing",
			},
		})
	}
	if k.Basic.CPA > HighCPAThreshold {
		hints = append(hints, Hint{
			Type:     "cost_optimization",
			Priority: "medium",
			Message:  "Cost per acquisition is high.",
			Actions: []string{
				"Review the bidding strategy",
				"Shift spend to more efficient channels",
				"Negotiate better network rates",
			},
		})
	}

	if dims := k.Advanced.ByDimension; len(dims) > 0 {
		best, worst := dims[0], dims[len(dims)-1]
		hints = append(hints, Hint{
			Type:     "channel_optimization",
			Priority: "medium",
			Message:  fmt.Sprintf("Allocate more budget to %s (ROI: %.2f%%).", best.Name, best.ROI),
			Actions: []string{
				fmt.Sprintf("Increase investment in %s", best.Name),
				fmt.Sprintf("Reduce or optimize %s", worst.Name),
				"Replicate the strategies of the best performing channels",
			},
		})
	}
	return hints
}
