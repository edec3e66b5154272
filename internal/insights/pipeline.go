package insights

import (
	"go.uber.org/zap"

	"github.com/radiusdt/campaign-insights/internal/extract"
	"github.com/radiusdt/campaign-insights/internal/metrics"
	"github.com/radiusdt/campaign-insights/internal/models"
)

// Pipeline turns generative content into canonical results, falling back
// to the statistical and baseline models when the content is unusable.
// Its Normalize methods never fail.
type Pipeline struct {
	extractor   *extract.Extractor
	statistical *StatisticalModel
	baseline    *BaselineModel
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewPipeline creates a pipeline. A nil extractor uses the default tiers;
// logger and metrics may be nil.
func NewPipeline(params ModelParams, extractor *extract.Extractor, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor:   extractor,
		statistical: NewStatisticalModel(params),
		baseline:    NewBaselineModel(params),
		logger:      logger,
		metrics:     m,
	}
}

// NormalizePrediction resolves content into a prediction for campaign.
func (p *Pipeline) NormalizePrediction(content extract.Content, historical []models.KPISet, campaign models.CampaignInput) models.PredictionResult {
	const kind = extract.KindPrediction

	res, ok := attempt(p, kind, func() (models.PredictionResult, bool) {
		partial, ok := p.extract(content, kind)
		if !ok {
			return models.PredictionResult{}, false
		}
		return EnsurePrediction(partial), true
	})
	if !ok {
		if res, ok = p.statistical.Predict(campaign, historical); !ok {
			res = p.baseline.Predict(campaign)
		}
	}

	p.done(kind, res.Source, zap.Int("historical", len(historical)))
	return res
}

// NormalizeAnalysis resolves content into an analysis of kpis.
func (p *Pipeline) NormalizeAnalysis(content extract.Content, kpis models.KPISet) models.AnalysisResult {
	const kind = extract.KindAnalysis

	res, ok := attempt(p, kind, func() (models.AnalysisResult, bool) {
		partial, ok := p.extract(content, kind)
		if !ok {
			return models.AnalysisResult{}, false
		}
		return EnsureAnalysis(partial), true
	})
	if !ok {
		res = AnalyzeFromKPIs(kpis)
	}

	p.done(kind, res.Source)
	return res
}

// NormalizeAllocation resolves content into a budget split over channels.
func (p *Pipeline) NormalizeAllocation(content extract.Content, channels []string) models.BudgetAllocation {
	const kind = extract.KindAllocation

	res, ok := attempt(p, kind, func() (models.BudgetAllocation, bool) {
		partial, ok := p.extract(content, kind)
		if !ok {
			return models.BudgetAllocation{}, false
		}
		return EnsureAllocation(partial, channels), true
	})
	if !ok {
		res = BalancedAllocation(channels)
	}

	p.done(kind, res.Source, zap.Int("channels", len(res.Allocation)))
	return res
}

func (p *Pipeline) extract(content extract.Content, kind extract.Kind) (extract.Partial, bool) {
	if content == nil {
		content = extract.Absent{}
	}
	partial, ok := p.extractor.Extract(content, kind)
	p.metrics.RecordExtraction(string(kind), string(partial.Tier))
	return partial, ok
}

func (p *Pipeline) done(kind extract.Kind, source models.Source, fields ...zap.Field) {
	p.metrics.RecordOutcome(string(kind), string(source))
	p.logger.Debug("normalized generative content",
		append([]zap.Field{
			zap.String("kind", string(kind)),
			zap.String("source", string(source)),
		}, fields...)...,
	)
}

// attempt runs fn, converting a panic into a plain failure.
func attempt[T any](p *Pipeline, kind extract.Kind, fn func() (T, bool)) (res T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("recovered panic during extraction",
				zap.String("kind", string(kind)),
				zap.Any("panic", r),
			)
			p.metrics.RecordRecoveredPanic(string(kind))
			var zero T
			res, ok = zero, false
		}
	}()
	return fn()
}
