package insights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/radiusdt/campaign-insights/internal/analytics"
	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/generative"
	"github.com/radiusdt/campaign-insights/internal/metrics"
	"github.com/radiusdt/campaign-insights/internal/models"
	"github.com/radiusdt/campaign-insights/internal/storage"
)

// ServiceConfig tunes how the service gathers inputs.
type ServiceConfig struct {
	GenerateTimeout time.Duration
	// HistoryLimit caps the historical campaigns fed to a prediction.
	HistoryLimit int
	// HistoryWindow is how far back rows are read; 0 reads everything.
	HistoryWindow time.Duration
	// CampaignKey is the dimension tag that identifies a campaign.
	CampaignKey string
}

// DefaultServiceConfig returns the standard settings.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		GenerateTimeout: 30 * time.Second,
		HistoryLimit:    10,
		HistoryWindow:   90 * 24 * time.Hour,
		CampaignKey:     "campaign_id",
	}
}

// AnalysisReport bundles an analysis with the KPIs it was drawn from.
type AnalysisReport struct {
	ProjectID   string                `json:"project_id"`
	KPIs        models.KPISet         `json:"kpis"`
	Analysis    models.AnalysisResult `json:"analysis"`
	Hints       []analytics.Hint      `json:"optimization_hints"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// AllocationReport is an allocation with the budget split into amounts.
type AllocationReport struct {
	ProjectID   string                  `json:"project_id"`
	Budget      float64                 `json:"budget"`
	Allocation  models.BudgetAllocation `json:"allocation"`
	Amounts     map[string]float64      `json:"amounts"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// Service ties the record store and the generator to the aggregator and
// the normalization pipeline.
type Service struct {
	store      storage.RecordStore
	generator  generative.Generator
	ledger     storage.UsageLedger
	aggregator *analytics.Aggregator
	pipeline   *Pipeline
	cfg        ServiceConfig
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewService creates a service. generator and ledger may be nil.
func NewService(
	store storage.RecordStore,
	generator generative.Generator,
	ledger storage.UsageLedger,
	aggregator *analytics.Aggregator,
	pipeline *Pipeline,
	cfg ServiceConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Service {
	def := DefaultServiceConfig()
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = def.GenerateTimeout
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.CampaignKey == "" {
		cfg.CampaignKey = def.CampaignKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregator == nil {
		aggregator = analytics.NewAggregator(analytics.DefaultConfig())
	}
	if pipeline == nil {
		pipeline = NewPipeline(DefaultModelParams(), nil, logger, m)
	}
	return &Service{
		store:      store,
		generator:  generator,
		ledger:     ledger,
		aggregator: aggregator,
		pipeline:   pipeline,
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Aggregator returns the aggregator used by the service.
func (s *Service) Aggregator() *analytics.Aggregator {
	return s.aggregator
}

// Pipeline returns the normalization pipeline used by the service.
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// Aggregate computes KPIs for rows, recording aggregation metrics.
func (s *Service) Aggregate(rows []models.MetricRow, groupBy string) models.KPISet {
	start := time.Now()
	kpis := s.aggregator.Aggregate(rows, groupBy)
	s.metrics.RecordAggregation(kpis.Advanced.DimensionKey, len(rows), time.Since(start))
	return kpis
}

// KPIs reads a project's rows inside [from, to) and aggregates them.
func (s *Service) KPIs(ctx context.Context, projectID string, from, to time.Time, groupBy string) (models.KPISet, error) {
	rows, err := s.rows(ctx, projectID, from, to)
	if err != nil {
		return models.KPISet{}, err
	}
	return s.Aggregate(rows, groupBy), nil
}

// Predict forecasts campaign from the project's historical campaigns and
// the generator's output.
func (s *Service) Predict(ctx context.Context, projectID string, campaign models.CampaignInput) (models.PredictionResult, error) {
	campaign = campaign.WithDefaults()

	rows, err := s.rows(ctx, projectID, s.historyStart(), time.Time{})
	if err != nil {
		return models.PredictionResult{}, err
	}
	historical := s.Historical(rows)

	content := s.generate(ctx, extract.KindPrediction, generative.PredictionPrompt(campaign, historical))
	return s.pipeline.NormalizePrediction(content, historical, campaign), nil
}

// Analyze builds a report over the project's rows from the last window
// (all rows when window is 0).
func (s *Service) Analyze(ctx context.Context, projectID string, window time.Duration, objective string) (AnalysisReport, error) {
	var from time.Time
	if window > 0 {
		from = s.now().Add(-window)
	}
	kpis, err := s.KPIs(ctx, projectID, from, time.Time{}, "")
	if err != nil {
		return AnalysisReport{}, err
	}

	content := s.generate(ctx, extract.KindAnalysis, generative.AnalysisPrompt(kpis, objective))
	return AnalysisReport{
		ProjectID:   projectID,
		KPIs:        kpis,
		Analysis:    s.pipeline.NormalizeAnalysis(content, kpis),
		Hints:       analytics.OptimizationHints(kpis),
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Allocate splits budget across the project's channels.
func (s *Service) Allocate(ctx context.Context, projectID string, budget float64) (AllocationReport, error) {
	if budget < 0 {
		return AllocationReport{}, errors.New("budget must be non-negative")
	}
	kpis, err := s.KPIs(ctx, projectID, s.historyStart(), time.Time{}, "")
	if err != nil {
		return AllocationReport{}, err
	}
	channels := lo.FilterMap(kpis.Advanced.ByDimension, func(d models.DimensionKPI, _ int) (string, bool) {
		return d.Name, d.Name != models.UnknownDimension
	})

	content := s.generate(ctx, extract.KindAllocation, generative.AllocationPrompt(kpis.Advanced.ByDimension, budget))
	alloc := s.pipeline.NormalizeAllocation(content, channels)

	amounts := make(map[string]float64, len(alloc.Allocation))
	for ch, pct := range alloc.Allocation {
		amounts[ch] = roundTo(budget*pct/100, 2)
	}
	return AllocationReport{
		ProjectID:   projectID,
		Budget:      budget,
		Allocation:  alloc,
		Amounts:     amounts,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Usage returns the generative usage recorded for day.
func (s *Service) Usage(ctx context.Context, day time.Time) ([]storage.TokenUsage, error) {
	if s.ledger == nil {
		return []storage.TokenUsage{}, nil
	}
	return s.ledger.Daily(ctx, day)
}

// Historical groups rows by campaign and returns one KPISet per campaign,
// most recently active first, capped at HistoryLimit.
func (s *Service) Historical(rows []models.MetricRow) []models.KPISet {
	groups := lo.GroupBy(rows, func(r models.MetricRow) string { return r.Tag(s.cfg.CampaignKey) })

	type campaign struct {
		id   string
		last time.Time
		rows []models.MetricRow
	}
	campaigns := make([]campaign, 0, len(groups))
	for id, rs := range groups {
		c := campaign{id: id, rows: rs}
		for _, r := range rs {
			if r.Timestamp.After(c.last) {
				c.last = r.Timestamp
			}
		}
		campaigns = append(campaigns, c)
	}
	sort.Slice(campaigns, func(i, j int) bool {
		if !campaigns[i].last.Equal(campaigns[j].last) {
			return campaigns[i].last.After(campaigns[j].last)
		}
		return campaigns[i].id < campaigns[j].id
	})
	if len(campaigns) > s.cfg.HistoryLimit {
		campaigns = campaigns[:s.cfg.HistoryLimit]
	}

	return lo.Map(campaigns, func(c campaign, _ int) models.KPISet {
		return s.aggregator.Aggregate(c.rows, "")
	})
}

func (s *Service) historyStart() time.Time {
	if s.cfg.HistoryWindow <= 0 {
		return time.Time{}
	}
	return s.now().Add(-s.cfg.HistoryWindow)
}

func (s *Service) rows(ctx context.Context, projectID string, from, to time.Time) ([]models.MetricRow, error) {
	if s.store == nil {
		return nil, nil
	}
	start := time.Now()
	rows, err := s.store.ListRows(ctx, projectID, from, to)
	s.metrics.RecordStoreQuery("records", "list_rows", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows for project %s: %w", projectID, err)
	}
	return rows, nil
}

// generate calls the generator and converts its outcome to Content. Every
// failure becomes Absent.
func (s *Service) generate(ctx context.Context, kind extract.Kind, prompt string) extract.Content {
	if s.generator == nil {
		return extract.Absent{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.generator.Generate(ctx, prompt)
	latency := time.Since(start)

	switch {
	case errors.Is(err, generative.ErrDisabled):
		s.metrics.RecordGeneration(string(kind), "disabled", latency)
		return extract.Absent{}
	case err != nil:
		s.metrics.RecordGeneration(string(kind), "error", latency)
		s.logger.Warn("generative request failed",
			zap.String("kind", string(kind)),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return extract.Absent{}
	case resp == nil:
		s.metrics.RecordGeneration(string(kind), "empty", latency)
		return extract.Absent{}
	}

	s.recordUsage(ctx, resp)
	content := ContentFromResponse(resp)
	status := "success"
	if _, absent := content.(extract.Absent); absent {
		status = "empty"
	}
	s.metrics.RecordGeneration(string(kind), status, latency)
	return content
}

func (s *Service) recordUsage(ctx context.Context, resp *generative.Response) {
	if resp.Usage == nil {
		return
	}
	s.metrics.RecordTokens(resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if s.ledger == nil {
		return
	}
	// The generation context may be close to its deadline; usage is
	// recorded on a fresh one.
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.ledger.Record(lctx, resp.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens); err != nil {
		s.logger.Warn("failed to record token usage", zap.String("model", resp.Model), zap.Error(err))
	}
}

// ContentFromResponse maps a generator response onto the Content union.
func ContentFromResponse(resp *generative.Response) extract.Content {
	switch {
	case resp == nil || !resp.Success:
		return extract.Absent{}
	case resp.Data != nil:
		return extract.Structured{Value: resp.Data}
	case resp.Content != "":
		return extract.RawText(resp.Content)
	}
	return extract.Absent{}
}
