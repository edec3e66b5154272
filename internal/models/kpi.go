package models

// BasicKPI holds summed volumes and the metrics derived from them.
// CTR, ConversionRate and ROI are percentages.
type BasicKPI struct {
	Impressions    float64 `json:"impressions"`
	Clicks         float64 `json:"clicks"`
	Conversions    float64 `json:"conversions"`
	Cost           float64 `json:"cost"`
	Revenue        float64 `json:"revenue"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
	CPC            float64 `json:"cpc"`
	CPA            float64 `json:"cpa"`
	ROI            float64 `json:"roi"`
}

// IsZero reports whether no delivery was recorded at all.
func (b BasicKPI) IsZero() bool {
	return b.Impressions == 0 && b.Clicks == 0 && b.Conversions == 0 &&
		b.Cost == 0 && b.Revenue == 0 && b.CTR == 0 && b.ConversionRate == 0 && b.ROI == 0
}

// DimensionKPI is the basic rollup of one group of a dimension slice.
type DimensionKPI struct {
	Name string `json:"name"`
	BasicKPI
	Efficiency float64 `json:"efficiency"`
}

// BudgetKPI summarises approved budget against spend.
type BudgetKPI struct {
	TotalBudget         float64 `json:"total_budget"`
	SpentBudget         float64 `json:"spent_budget"`
	RemainingBudget     float64 `json:"remaining_budget"`
	UtilizationPct      float64 `json:"budget_utilization_pct"`
	RevenuePerSpentUnit float64 `json:"revenue_per_spent_unit"`
}

// Advanced groups the sliced views of a KPISet.
type Advanced struct {
	DimensionKey     string         `json:"dimension_key"`
	ByDimension      []DimensionKPI `json:"by_dimension"`
	Creatives        []DimensionKPI `json:"creatives"`
	BudgetEfficiency BudgetKPI      `json:"budget_efficiency"`
}

// DailyPoint is the basic rollup of one calendar day (UTC).
type DailyPoint struct {
	Date string `json:"date"`
	BasicKPI
}

// TrendDeltas are first-to-last day percentage changes.
type TrendDeltas struct {
	CTR         float64 `json:"ctr"`
	Cost        float64 `json:"cost"`
	Conversions float64 `json:"conversions"`
}

// TrendSeries is the date-ascending daily view. Deltas is nil with fewer
// than two distinct days.
type TrendSeries struct {
	Daily  []DailyPoint `json:"daily"`
	Deltas *TrendDeltas `json:"deltas,omitempty"`
}

// KPISet is the aggregate of a collection of MetricRows.
type KPISet struct {
	Basic    BasicKPI    `json:"basic"`
	Advanced Advanced    `json:"advanced"`
	Trends   TrendSeries `json:"trends"`
}

// HasResults reports whether the set carries any usable measurement.
func (k KPISet) HasResults() bool {
	return !k.Basic.IsZero()
}
