package analytics

import (
	"sort"

	"github.com/radiusdt/campaign-insights/internal/models"
)

// Trends aggregates rows per UTC calendar day, oldest first. Rows without a
// timestamp are left out of the series.
func (a *Aggregator) Trends(rows []models.MetricRow) models.TrendSeries {
	byDay := make(map[string][]models.MetricRow)
	for _, r := range rows {
		if r.Timestamp.IsZero() {
			continue
		}
		d := dayUTC(r.Timestamp)
		byDay[d] = append(byDay[d], r)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	series := models.TrendSeries{Daily: make([]models.DailyPoint, 0, len(days))}
	for _, d := range days {
		series.Daily = append(series.Daily, models.DailyPoint{
			Date:     d,
			BasicKPI: a.Basic(byDay[d]),
		})
	}

	if len(series.Daily) >= 2 {
		first := series.Daily[0]
		last := series.Daily[len(series.Daily)-1]
		series.Deltas = &models.TrendDeltas{
			CTR:         pctChange(first.CTR, last.CTR),
			Cost:        pctChange(first.Cost, last.Cost),
			Conversions: pctChange(first.Conversions, last.Conversions),
		}
	}
	return series
}

// pctChange is (last-first)/first in percent; a zero baseline counts as 1.
func pctChange(first, last float64) float64 {
	base := first
	if base == 0 {
		base = 1
	}
	return round2((last - first) / base * 100)
}

// Direction labels the movement of a metric across the last window days.
func Direction(series models.TrendSeries, window int, metric func(models.BasicKPI) float64) string {
	daily := series.Daily
	if window > 0 && len(daily) > window {
		daily = daily[len(daily)-window:]
	}
	if len(daily) < 2 {
		return "stable"
	}
	first := metric(daily[0].BasicKPI)
	last := metric(daily[len(daily)-1].BasicKPI)
	switch {
	case last > first:
		return "improving"
	case last < first:
		return "declining"
	}
	return "stable"
}
