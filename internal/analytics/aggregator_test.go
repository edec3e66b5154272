package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/radiusdt/campaign-insights/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC)
}

func row(channel, creative string, imps, clicks, conv, cost float64, ts time.Time) models.MetricRow {
	return models.MetricRow{
		Impressions:    imps,
		Clicks:         clicks,
		Conversions:    conv,
		Cost:           cost,
		ApprovedBudget: 100,
		Tags:           map[string]string{"channel_name": channel, "creative_id": creative},
		Timestamp:      ts,
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	set := agg.Aggregate(nil, "")

	if set.HasResults() {
		t.Fatalf("empty input should have no results: %+v", set.Basic)
	}
	if set.Basic != (models.BasicKPI{}) {
		t.Fatalf("basic should be all zero: %+v", set.Basic)
	}
	if len(set.Advanced.ByDimension) != 0 || len(set.Advanced.Creatives) != 0 {
		t.Fatalf("slices should be empty")
	}
	if set.Advanced.ByDimension == nil || set.Trends.Daily == nil {
		t.Fatalf("empty slices should be non-nil for serialization")
	}
	if set.Trends.Deltas != nil {
		t.Fatalf("no deltas expected")
	}
	if set.Advanced.BudgetEfficiency != (models.BudgetKPI{}) {
		t.Fatalf("budget should be zero: %+v", set.Advanced.BudgetEfficiency)
	}
}

func TestAggregateBasicMetrics(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	rows := []models.MetricRow{
		row("search", "c1", 1000, 50, 5, 100, day(1)),
		row("social", "c2", 3000, 30, 1, 200, day(2)),
	}
	b := agg.Aggregate(rows, "").Basic

	if b.Impressions != 4000 || b.Clicks != 80 || b.Conversions != 6 || b.Cost != 300 {
		t.Fatalf("unexpected sums: %+v", b)
	}
	if b.Revenue != 600 {
		t.Fatalf("revenue = %v, want 600", b.Revenue)
	}
	if b.CTR != 2 {
		t.Fatalf("ctr = %v, want 2", b.CTR)
	}
	if b.ConversionRate != 7.5 {
		t.Fatalf("conversion_rate = %v, want 7.5", b.ConversionRate)
	}
	if b.CPC != 3.75 || b.CPA != 50 {
		t.Fatalf("cpc/cpa = %v/%v", b.CPC, b.CPA)
	}
	if b.ROI != 100 {
		t.Fatalf("roi = %v, want 100", b.ROI)
	}
}

func TestAggregateExplicitRevenueAndUnitValue(t *testing.T) {
	agg := NewAggregator(Config{UnitValue: 50})
	rev := 1000.0
	rows := []models.MetricRow{
		{Conversions: 2, Cost: 100, Revenue: &rev},
		{Conversions: 4, Cost: 100},
	}
	b := agg.Basic(rows)
	if b.Revenue != 1200 {
		t.Fatalf("revenue = %v, want 1200", b.Revenue)
	}
}

func TestCTRBoundedAndZeroWithoutImpressions(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	cases := [][]models.MetricRow{
		{{Impressions: 0, Clicks: 10}},
		{{Impressions: 10, Clicks: 500}},
		{{Impressions: 1000, Clicks: 25}},
		{},
	}
	for i, rows := range cases {
		ctr := agg.Basic(rows).CTR
		if ctr < 0 || ctr > 100 || math.IsNaN(ctr) {
			t.Fatalf("case %d: ctr %v out of range", i, ctr)
		}
	}
	if agg.Basic(cases[0]).CTR != 0 {
		t.Fatalf("ctr should be 0 with zero impressions")
	}
}

func TestSliceByDimensionRanksByEfficiency(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	rows := []models.MetricRow{
		row("display", "a", 1000, 10, 0, 50, day(1)),
		row("search", "b", 1000, 40, 4, 40, day(1)),
		row("social", "c", 1000, 20, 1, 40, day(1)),
		{Impressions: 10, Clicks: 1, Cost: 1},
	}
	dims := agg.SliceByDimension(rows, "channel_name", 0)
	if len(dims) != 4 {
		t.Fatalf("got %d groups", len(dims))
	}
	if dims[0].Name != "search" {
		t.Fatalf("best group = %s, want search", dims[0].Name)
	}
	for i := 1; i < len(dims); i++ {
		if dims[i-1].Efficiency < dims[i].Efficiency {
			t.Fatalf("not sorted by efficiency: %+v", dims)
		}
	}
	found := false
	for _, d := range dims {
		if d.Name == models.UnknownDimension {
			found = true
		}
	}
	if !found {
		t.Fatalf("untagged rows should land in %q", models.UnknownDimension)
	}

	// search: roi = (400-40)/40*100 = 900, cpc = 1 -> efficiency 900
	if dims[0].Efficiency != 900 {
		t.Fatalf("efficiency = %v, want 900", dims[0].Efficiency)
	}
}

func TestCreativeSliceTruncated(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	var rows []models.MetricRow
	for i := 0; i < 15; i++ {
		rows = append(rows, row("search", string(rune('a'+i)), 100, float64(i+1), 1, 10, day(1)))
	}
	set := agg.Aggregate(rows, "channel_name")
	if len(set.Advanced.Creatives) != 10 {
		t.Fatalf("creatives = %d, want 10", len(set.Advanced.Creatives))
	}
	if len(set.Advanced.ByDimension) != 1 {
		t.Fatalf("channels = %d, want 1", len(set.Advanced.ByDimension))
	}
}

func TestBudgetEfficiency(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	rows := []models.MetricRow{
		{Cost: 150, Conversions: 3, ApprovedBudget: 500},
		{Cost: 50, ApprovedBudget: 500},
	}
	b := agg.Budget(rows)
	if b.TotalBudget != 1000 || b.SpentBudget != 200 || b.RemainingBudget != 800 {
		t.Fatalf("unexpected totals: %+v", b)
	}
	if b.UtilizationPct != 20 {
		t.Fatalf("utilization = %v, want 20", b.UtilizationPct)
	}
	if b.RevenuePerSpentUnit != 1.5 {
		t.Fatalf("revenue per spent unit = %v, want 1.5", b.RevenuePerSpentUnit)
	}

	noBudget := agg.Budget([]models.MetricRow{{Cost: 10}})
	if noBudget.UtilizationPct != 0 {
		t.Fatalf("utilization without budget = %v, want 0", noBudget.UtilizationPct)
	}
}

func TestTrendsUseChronologicalOrder(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	rows := []models.MetricRow{
		row("search", "a", 1000, 40, 4, 80, day(3)),
		row("search", "a", 1000, 20, 2, 40, day(1)),
		row("search", "a", 1000, 30, 0, 60, day(2)),
		{Impressions: 999},
	}
	tr := agg.Trends(rows)

	if len(tr.Daily) != 3 {
		t.Fatalf("days = %d, want 3", len(tr.Daily))
	}
	if tr.Daily[0].Date != "2024-05-01" || tr.Daily[2].Date != "2024-05-03" {
		t.Fatalf("days not ascending: %+v", tr.Daily)
	}
	if tr.Deltas == nil {
		t.Fatalf("deltas expected with 3 days")
	}
	// ctr 2% -> 4%, cost 40 -> 80, conversions 2 -> 4
	if tr.Deltas.CTR != 100 || tr.Deltas.Cost != 100 || tr.Deltas.Conversions != 100 {
		t.Fatalf("unexpected deltas: %+v", *tr.Deltas)
	}
}

func TestTrendsZeroBaseline(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	rows := []models.MetricRow{
		{Impressions: 100, Timestamp: day(1)},
		{Impressions: 100, Clicks: 5, Conversions: 3, Cost: 7, Timestamp: day(2)},
	}
	tr := agg.Trends(rows)
	if tr.Deltas == nil {
		t.Fatalf("deltas expected")
	}
	if tr.Deltas.Conversions != 300 || tr.Deltas.Cost != 700 {
		t.Fatalf("zero baseline should divide by 1: %+v", *tr.Deltas)
	}
	for _, v := range []float64{tr.Deltas.CTR, tr.Deltas.Cost, tr.Deltas.Conversions} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("delta not finite: %+v", *tr.Deltas)
		}
	}
}

func TestTrendsSingleDayHasNoDeltas(t *testing.T) {
	agg := NewAggregator(DefaultConfig())
	tr := agg.Trends([]models.MetricRow{
		{Impressions: 10, Timestamp: day(1)},
		{Impressions: 10, Timestamp: day(1).Add(3 * time.Hour)},
	})
	if len(tr.Daily) != 1 || tr.Deltas != nil {
		t.Fatalf("unexpected series: %+v", tr)
	}
}

func TestDirection(t *testing.T) {
	series := models.TrendSeries{Daily: []models.DailyPoint{
		{Date: "2024-05-01", BasicKPI: models.BasicKPI{CTR: 1}},
		{Date: "2024-05-02", BasicKPI: models.BasicKPI{CTR: 3}},
		{Date: "2024-05-03", BasicKPI: models.BasicKPI{CTR: 2}},
	}}
	ctr := func(b models.BasicKPI) float64 { return b.CTR }
	if got := Direction(series, 0, ctr); got != "improving" {
		t.Fatalf("got %s", got)
	}
	if got := Direction(series, 2, ctr); got != "declining" {
		t.Fatalf("got %s", got)
	}
}
