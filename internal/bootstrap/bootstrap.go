// Package bootstrap wires configuration into connected backends and the
// insights service. Both the API server and the CLI build through it.
package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/campaign-insights/internal/analytics"
	"github.com/radiusdt/campaign-insights/internal/config"
	"github.com/radiusdt/campaign-insights/internal/database"
	"github.com/radiusdt/campaign-insights/internal/generative"
	"github.com/radiusdt/campaign-insights/internal/insights"
	"github.com/radiusdt/campaign-insights/internal/metrics"
	"github.com/radiusdt/campaign-insights/internal/storage"
)

// Backends holds the connections opened for the configured stores. Each
// connection is nil when its backend is not in use or was unreachable.
type Backends struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB

	Records storage.RecordStore
	Usage   storage.UsageLedger
}

// Open connects the configured record store and usage ledger. A backend
// that cannot be reached is replaced by its in-memory implementation.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Backends {
	b := &Backends{}

	switch cfg.Storage.Records {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Warn("PostgreSQL not available, using in-memory record store", zap.Error(err))
			break
		}
		b.DB = db
		b.Records = storage.NewPostgresRecordStore(db.Pool, cfg.Storage.QueryLimit)
	case config.BackendClickHouse:
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			logger.Warn("ClickHouse not available, using in-memory record store", zap.Error(err))
			break
		}
		b.ClickHouse = ch
		b.Records = storage.NewClickHouseRecordStore(ch.Conn, cfg.ClickHouse.Table, cfg.Storage.QueryLimit)
	}
	if b.Records == nil {
		b.Records = storage.NewInMemoryRecordStore(storage.WithRowLimit(cfg.Storage.QueryLimit))
	}

	if cfg.Storage.Usage == config.BackendRedis {
		rdb, err := database.NewRedisDB(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis not available, using in-memory usage ledger", zap.Error(err))
		} else {
			b.Redis = rdb
			b.Usage = storage.NewRedisUsageLedger(rdb.Client, cfg.Storage.UsageTTL)
		}
	}
	if b.Usage == nil {
		b.Usage = storage.NewInMemoryUsageLedger()
	}

	return b
}

// Close releases every open connection.
func (b *Backends) Close() {
	if b.DB != nil {
		b.DB.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	if b.ClickHouse != nil {
		_ = b.ClickHouse.Close()
	}
}

// AggregatorConfig maps the analytics settings onto the aggregator.
func AggregatorConfig(cfg config.AnalyticsConfig) analytics.Config {
	return analytics.Config{
		UnitValue:    cfg.UnitValue,
		CreativeTopN: cfg.CreativeTopN,
		ChannelKey:   cfg.ChannelKey,
		CreativeKey:  cfg.CreativeKey,
	}
}

// ModelParams overrides the default model constants with the configured
// coefficients. Zero values keep the defaults.
func ModelParams(cfg config.ModelConfig) insights.ModelParams {
	p := insights.DefaultModelParams()
	if cfg.BudgetScale > 0 {
		p.BudgetScale = cfg.BudgetScale
	}
	if cfg.CTRBase > 0 {
		p.CTRBase = cfg.CTRBase
	}
	if cfg.CTRBudgetWeight > 0 {
		p.CTRBudgetWeight = cfg.CTRBudgetWeight
	}
	if cfg.ROIBase > 0 {
		p.ROIBase = cfg.ROIBase
	}
	if cfg.ROIBudgetWeight > 0 {
		p.ROIBudgetWeight = cfg.ROIBudgetWeight
	}
	return p
}

// ServiceConfig derives the service settings.
func ServiceConfig(cfg *config.Config) insights.ServiceConfig {
	return insights.ServiceConfig{
		GenerateTimeout: cfg.Generative.Timeout,
		HistoryLimit:    cfg.Analytics.HistoryLimit,
		HistoryWindow:   time.Duration(cfg.Analytics.HistoryDays) * 24 * time.Hour,
		CampaignKey:     cfg.Analytics.CampaignKey,
	}
}

// NewGenerator returns the Gemini generator, or Disabled when generation is
// switched off or the client cannot be created.
func NewGenerator(ctx context.Context, cfg config.GenerativeConfig, logger *zap.Logger) generative.Generator {
	if !cfg.Enabled {
		logger.Info("generative service disabled, using statistical models only")
		return generative.Disabled{}
	}
	g, err := generative.NewGemini(ctx, generative.GeminiConfig{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		Temperature:     float32(cfg.Temperature),
		MaxOutputTokens: int32(cfg.MaxOutputTokens),
		JSONMode:        cfg.JSONMode,
	}, logger)
	if err != nil {
		logger.Warn("generative service not available, using statistical models only", zap.Error(err))
		return generative.Disabled{}
	}
	return g
}

// NewService builds the insights service over the given backends.
func NewService(ctx context.Context, cfg *config.Config, b *Backends, logger *zap.Logger, m *metrics.Metrics) *insights.Service {
	pipeline := insights.NewPipeline(ModelParams(cfg.Model), nil, logger, m)
	return insights.NewService(
		b.Records,
		NewGenerator(ctx, cfg.Generative, logger),
		b.Usage,
		analytics.NewAggregator(AggregatorConfig(cfg.Analytics)),
		pipeline,
		ServiceConfig(cfg),
		logger,
		m,
	)
}
