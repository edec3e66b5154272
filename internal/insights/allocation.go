package insights

import (
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// Allocation defaults.
const (
	DefaultExpectedROIImprovement  = 15.0
	BalancedExpectedROIImprovement = 10.0
	DefaultAllocationRationale     = "Allocation weighted toward the channels with the best historical return"
	DefaultAllocationNote          = "Allocation suggested from the supplied channel data"

	// allocationTolerance is how far from 100 a split may sum before it is
	// rescaled.
	allocationTolerance = 0.5
)

// DefaultChannelSplit applies when no channels are known.
var DefaultChannelSplit = map[string]float64{
	"search":  40,
	"social":  30,
	"display": 20,
	"video":   10,
}

// EnsureAllocation turns any partial into a complete allocation whose
// shares sum to 100. A partial without usable shares yields the balanced
// split over channels.
func EnsureAllocation(partial extract.Partial, channels []string) models.BudgetAllocation {
	if partial.Fields == nil {
		partial.Fields = map[string]any{}
	}
	p := extract.NewPartial(extract.Normalize(partial.Fields, extract.KindAllocation), partial.Tier)

	raw, ok := p.Map("allocation")
	if !ok {
		// Flat shape: channel keys at the top level.
		raw = lo.PickByKeys(p.Fields, lo.Keys(DefaultChannelSplit))
	}
	shares := make(map[string]float64, len(raw))
	for name, v := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		if f, ok := models.ToFloat(v); ok && f > 0 && name != "" {
			shares[name] = f
		}
	}
	if len(shares) == 0 {
		return BalancedAllocation(channels)
	}

	if sum := lo.Sum(lo.Values(shares)); math.Abs(sum-100) > allocationTolerance {
		for k, v := range shares {
			shares[k] = v / sum * 100
		}
	}
	for k, v := range shares {
		shares[k] = roundTo(v, 2)
	}

	return models.BudgetAllocation{
		Allocation:             shares,
		ExpectedROIImprovement: ResolveMetric(p.Fields["expected_roi_improvement"], p.Fields["melhoria_roi_esperada"], DefaultExpectedROIImprovement),
		Rationale:              stringField(p.Fields, DefaultAllocationRationale, "rationale", "justificativa"),
		Source:                 ensureSource(p),
		Confidence:             ensureConfidence(p),
		Note:                   stringField(p.Fields, DefaultAllocationNote, "note", "observacao"),
	}
}

// BalancedAllocation splits the budget equally across channels, or uses
// DefaultChannelSplit when none are given.
func BalancedAllocation(channels []string) models.BudgetAllocation {
	names := lo.Uniq(lo.FilterMap(channels, func(c string, _ int) (string, bool) {
		c = strings.ToLower(strings.TrimSpace(c))
		return c, c != ""
	}))

	shares := make(map[string]float64, max(len(names), len(DefaultChannelSplit)))
	if len(names) == 0 {
		for k, v := range DefaultChannelSplit {
			shares[k] = v
		}
	} else {
		each := roundTo(100/float64(len(names)), 2)
		for _, n := range names {
			shares[n] = each
		}
	}

	return models.BudgetAllocation{
		Allocation:             shares,
		ExpectedROIImprovement: BalancedExpectedROIImprovement,
		Rationale:              "Balanced split across the available channels until performance data is available",
		Source:                 models.SourceBalanced,
		Confidence:             models.ConfidenceLow,
		Note:                   "Allocation produced without generative content",
	}
}
