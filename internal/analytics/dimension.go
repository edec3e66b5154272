package analytics

import (
	"math"
	"sort"

	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/samber/lo"
)

// SliceByDimension groups rows by the tag key and ranks the groups by
// efficiency (roi / max(cpc, 1)), best first. topN > 0 truncates the slice.
func (a *Aggregator) SliceByDimension(rows []models.MetricRow, key string, topN int) []models.DimensionKPI {
	groups := lo.GroupBy(rows, func(r models.MetricRow) string {
		return r.Tag(key)
	})

	out := make([]models.DimensionKPI, 0, len(groups))
	for name, groupRows := range groups {
		basic := a.Basic(groupRows)
		out = append(out, models.DimensionKPI{
			Name:       name,
			BasicKPI:   basic,
			Efficiency: round2(basic.ROI / math.Max(basic.CPC, 1)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Efficiency != out[j].Efficiency {
			return out[i].Efficiency > out[j].Efficiency
		}
		return out[i].Name < out[j].Name
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
