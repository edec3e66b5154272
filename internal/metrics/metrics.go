package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Normalization metrics
	NormalizeOutcomes *prometheus.CounterVec
	ExtractionTiers   *prometheus.CounterVec
	RecoveredPanics   *prometheus.CounterVec

	// Aggregation metrics
	AggregatedRows     *prometheus.HistogramVec
	AggregationLatency *prometheus.HistogramVec

	// Generative service metrics
	GenerativeRequests *prometheus.CounterVec
	GenerativeLatency  *prometheus.HistogramVec
	GenerativeTokens   *prometheus.CounterVec

	// Record store metrics
	StoreLatency *prometheus.HistogramVec
	StoreErrors  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPLatency   *prometheus.HistogramVec
	RateLimitHits *prometheus.CounterVec

	// System metrics
	DBConnections *prometheus.GaugeVec
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		NormalizeOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "normalize_outcomes_total",
				Help:      "Canonical results produced, by result kind and source tier",
			},
			[]string{"kind", "source"},
		),
		ExtractionTiers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_tier_total",
				Help:      "Extraction attempts by the tier that produced the partial result",
			},
			[]string{"kind", "tier"},
		),
		RecoveredPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "normalize_recovered_panics_total",
				Help:      "Panics recovered at the normalization boundary",
			},
			[]string{"kind"},
		),

		AggregatedRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregated_rows",
				Help:      "Number of metric rows folded per aggregation",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"dimension"},
		),
		AggregationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_latency_seconds",
				Help:      "KPI aggregation latency in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"dimension"},
		),

		GenerativeRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generative_requests_total",
				Help:      "Calls to the generative-text service",
			},
			[]string{"kind", "status"},
		),
		GenerativeLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generative_latency_seconds",
				Help:      "Generative-text service latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind"},
		),
		GenerativeTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generative_tokens_total",
				Help:      "Tokens consumed by the generative-text service",
			},
			[]string{"model", "type"},
		),

		StoreLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_latency_seconds",
				Help:      "Record store query latency",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"backend", "operation"},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Record store failures",
			},
			[]string{"backend", "operation"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"endpoint"},
		),

		DBConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a metrics handler serving the given gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordOutcome records which source produced a canonical result.
func (m *Metrics) RecordOutcome(kind, source string) {
	if m == nil {
		return
	}
	m.NormalizeOutcomes.WithLabelValues(kind, source).Inc()
}

// RecordExtraction records the tier an extraction attempt ended in.
func (m *Metrics) RecordExtraction(kind, tier string) {
	if m == nil {
		return
	}
	m.ExtractionTiers.WithLabelValues(kind, tier).Inc()
}

// RecordRecoveredPanic records a panic caught at the normalization boundary.
func (m *Metrics) RecordRecoveredPanic(kind string) {
	if m == nil {
		return
	}
	m.RecoveredPanics.WithLabelValues(kind).Inc()
}

// RecordAggregation records the size and latency of an aggregation.
func (m *Metrics) RecordAggregation(dimension string, rows int, latency time.Duration) {
	if m == nil {
		return
	}
	m.AggregatedRows.WithLabelValues(dimension).Observe(float64(rows))
	m.AggregationLatency.WithLabelValues(dimension).Observe(latency.Seconds())
}

// RecordGeneration records a generative-service call.
func (m *Metrics) RecordGeneration(kind, status string, latency time.Duration) {
	if m == nil {
		return
	}
	m.GenerativeRequests.WithLabelValues(kind, status).Inc()
	m.GenerativeLatency.WithLabelValues(kind).Observe(latency.Seconds())
}

// RecordTokens records token usage.
func (m *Metrics) RecordTokens(model string, prompt, completion int64) {
	if m == nil {
		return
	}
	m.GenerativeTokens.WithLabelValues(model, "prompt").Add(float64(prompt))
	m.GenerativeTokens.WithLabelValues(model, "completion").Add(float64(completion))
}

// RecordStoreQuery records a record store query and its failure, if any.
func (m *Metrics) RecordStoreQuery(backend, operation string, latency time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreLatency.WithLabelValues(backend, operation).Observe(latency.Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	if m == nil {
		return
	}
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}
