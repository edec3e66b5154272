package analytics

import (
	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/samber/lo"
)

// Budget compares approved budget against spend.
func (a *Aggregator) Budget(rows []models.MetricRow) models.BudgetKPI {
	total := lo.SumBy(rows, func(r models.MetricRow) float64 { return r.ApprovedBudget })
	spent := lo.SumBy(rows, func(r models.MetricRow) float64 { return r.Cost })
	revenue := lo.SumBy(rows, a.rowRevenue)

	return models.BudgetKPI{
		TotalBudget:         round2(total),
		SpentBudget:         round2(spent),
		RemainingBudget:     round2(total - spent),
		UtilizationPct:      round2(floor0(safeDiv(spent, total) * 100)),
		RevenuePerSpentUnit: round2(floor0(safeDiv(revenue, spent))),
	}
}
