package analytics

import (
	"github.com/radiusdt/campaign-insights/internal/models"
)

// Config holds the tunable constants of the aggregator.
type Config struct {
	// UnitValue is the revenue credited per conversion when a row has no
	// explicit revenue.
	UnitValue float64
	// CreativeTopN limits the creative slice; 0 keeps every creative.
	CreativeTopN int
	ChannelKey   string
	CreativeKey  string
}

// DefaultConfig returns the standard aggregation settings.
func DefaultConfig() Config {
	return Config{
		UnitValue:    100,
		CreativeTopN: 10,
		ChannelKey:   "channel_name",
		CreativeKey:  "creative_id",
	}
}

// Aggregator folds MetricRows into KPISets. It holds no mutable state and
// is safe for concurrent use.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an aggregator; zero config fields take defaults.
func NewAggregator(cfg Config) *Aggregator {
	def := DefaultConfig()
	if cfg.UnitValue <= 0 {
		cfg.UnitValue = def.UnitValue
	}
	if cfg.CreativeTopN < 0 {
		cfg.CreativeTopN = 0
	}
	if cfg.ChannelKey == "" {
		cfg.ChannelKey = def.ChannelKey
	}
	if cfg.CreativeKey == "" {
		cfg.CreativeKey = def.CreativeKey
	}
	return &Aggregator{cfg: cfg}
}

// Config returns the effective configuration.
func (a *Aggregator) Config() Config {
	return a.cfg
}

// Aggregate computes the full KPISet. An empty groupingKey slices by channel.
func (a *Aggregator) Aggregate(rows []models.MetricRow, groupingKey string) models.KPISet {
	if groupingKey == "" {
		groupingKey = a.cfg.ChannelKey
	}

	set := models.KPISet{
		Basic: a.Basic(rows),
		Advanced: models.Advanced{
			DimensionKey:     groupingKey,
			ByDimension:      a.SliceByDimension(rows, groupingKey, 0),
			Creatives:        []models.DimensionKPI{},
			BudgetEfficiency: a.Budget(rows),
		},
		Trends: a.Trends(rows),
	}

	if groupingKey != a.cfg.CreativeKey && hasTag(rows, a.cfg.CreativeKey) {
		set.Advanced.Creatives = a.SliceByDimension(rows, a.cfg.CreativeKey, a.cfg.CreativeTopN)
	}
	return set
}

// Basic sums volumes across rows and derives the rate metrics.
func (a *Aggregator) Basic(rows []models.MetricRow) models.BasicKPI {
	var b models.BasicKPI
	for _, r := range rows {
		b.Impressions += r.Impressions
		b.Clicks += r.Clicks
		b.Conversions += r.Conversions
		b.Cost += r.Cost
		b.Revenue += a.rowRevenue(r)
	}
	return derive(b)
}

func (a *Aggregator) rowRevenue(r models.MetricRow) float64 {
	if r.Revenue != nil {
		return *r.Revenue
	}
	return r.Conversions * a.cfg.UnitValue
}

// derive fills the ratio metrics from summed volumes. Every ratio is 0 when
// its denominator is 0.
func derive(b models.BasicKPI) models.BasicKPI {
	b.CTR = round2(clampPct(safeDiv(b.Clicks, b.Impressions) * 100))
	b.ConversionRate = round2(clampPct(safeDiv(b.Conversions, b.Clicks) * 100))
	b.CPC = round2(safeDiv(b.Cost, b.Clicks))
	b.CPA = round2(safeDiv(b.Cost, b.Conversions))
	b.ROI = round2(safeDiv(b.Revenue-b.Cost, b.Cost) * 100)
	b.Cost = round2(b.Cost)
	b.Revenue = round2(b.Revenue)
	return b
}

func hasTag(rows []models.MetricRow, key string) bool {
	for _, r := range rows {
		if _, ok := r.Tags[key]; ok {
			return true
		}
	}
	return false
}
