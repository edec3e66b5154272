package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backends accepted by StorageConfig.
const (
	BackendMemory     = "memory"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
	BackendRedis      = "redis"
)

// Config holds all configuration for the campaign insights service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Storage    StorageConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Generative GenerativeConfig
	Analytics  AnalyticsConfig
	Model      ModelConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
	// MaxBodyBytes caps request bodies on the ingestion and normalize routes.
	MaxBodyBytes int64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ClickHouseConfig configures the warehouse record store.
type ClickHouseConfig struct {
	Addrs       []string
	Database    string
	Username    string
	Password    string
	Table       string
	DialTimeout time.Duration
}

// StorageConfig selects the record store and usage ledger backends.
type StorageConfig struct {
	// Records is memory, postgres or clickhouse.
	Records string
	// Usage is memory or redis.
	Usage    string
	UsageTTL time.Duration
	// QueryLimit caps the rows read per query.
	QueryLimit int
}

type AuthConfig struct {
	Enabled   bool
	MasterKey string
	SkipPaths []string
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	// Generative routes call the upstream service and get their own budget.
	GenerativeRPS   float64
	GenerativeBurst int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// GenerativeConfig configures the text-generation client.
type GenerativeConfig struct {
	Enabled         bool
	APIKey          string
	Model           string
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
	JSONMode        bool
}

// AnalyticsConfig holds aggregator constants.
type AnalyticsConfig struct {
	UnitValue    float64
	CreativeTopN int
	ChannelKey   string
	CreativeKey  string
	CampaignKey  string
	HistoryLimit int
	HistoryDays  int
}

// ModelConfig holds statistical model coefficients.
type ModelConfig struct {
	BudgetScale     float64
	CTRBase         float64
	CTRBudgetWeight float64
	ROIBase         float64
	ROIBudgetWeight float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("INSIGHTS_HTTP_ADDR", ":8080"),
			Env:             getEnv("INSIGHTS_ENV", "development"),
			ShutdownTimeout: getDurationEnv("INSIGHTS_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxBodyBytes:    int64(getIntEnv("INSIGHTS_MAX_BODY_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			Host:     getEnv("INSIGHTS_DB_HOST", "localhost"),
			Port:     getIntEnv("INSIGHTS_DB_PORT", 5432),
			User:     getEnv("INSIGHTS_DB_USER", "insights"),
			Password: getEnv("INSIGHTS_DB_PASSWORD", "insights_secret"),
			DBName:   getEnv("INSIGHTS_DB_NAME", "insights"),
			SSLMode:  getEnv("INSIGHTS_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("INSIGHTS_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("INSIGHTS_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("INSIGHTS_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("INSIGHTS_REDIS_PASSWORD", ""),
			DB:       getIntEnv("INSIGHTS_REDIS_DB", 0),
		},
		ClickHouse: ClickHouseConfig{
			Addrs:       getSliceEnv("INSIGHTS_CLICKHOUSE_ADDRS", []string{"localhost:9000"}),
			Database:    getEnv("INSIGHTS_CLICKHOUSE_DB", "default"),
			Username:    getEnv("INSIGHTS_CLICKHOUSE_USER", "default"),
			Password:    getEnv("INSIGHTS_CLICKHOUSE_PASSWORD", ""),
			Table:       getEnv("INSIGHTS_CLICKHOUSE_TABLE", "metric_rows"),
			DialTimeout: getDurationEnv("INSIGHTS_CLICKHOUSE_DIAL_TIMEOUT", 5*time.Second),
		},
		Storage: StorageConfig{
			Records:    strings.ToLower(getEnv("INSIGHTS_RECORD_STORE", BackendMemory)),
			Usage:      strings.ToLower(getEnv("INSIGHTS_USAGE_LEDGER", BackendMemory)),
			UsageTTL:   getDurationEnv("INSIGHTS_USAGE_TTL", 48*time.Hour),
			QueryLimit: getIntEnv("INSIGHTS_QUERY_LIMIT", 100000),
		},
		Auth: AuthConfig{
			Enabled:   getBoolEnv("INSIGHTS_AUTH_ENABLED", true),
			MasterKey: getEnv("INSIGHTS_API_KEY_MASTER", ""),
			SkipPaths: getSliceEnv("INSIGHTS_AUTH_SKIP_PATHS", []string{"/health", "/metrics"}),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("INSIGHTS_RATE_LIMIT_ENABLED", true),
			RPS:             getFloatEnv("INSIGHTS_RATE_LIMIT_RPS", 100),
			Burst:           getIntEnv("INSIGHTS_RATE_LIMIT_BURST", 50),
			GenerativeRPS:   getFloatEnv("INSIGHTS_RATE_LIMIT_GENERATIVE_RPS", 2),
			GenerativeBurst: getIntEnv("INSIGHTS_RATE_LIMIT_GENERATIVE_BURST", 5),
		},
		Log: LogConfig{
			Level:  getEnv("INSIGHTS_LOG_LEVEL", "info"),
			Format: getEnv("INSIGHTS_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("INSIGHTS_METRICS_ENABLED", true),
			Path:      getEnv("INSIGHTS_METRICS_PATH", "/metrics"),
			Namespace: getEnv("INSIGHTS_METRICS_NAMESPACE", "insights"),
		},
		Generative: GenerativeConfig{
			Enabled:         getBoolEnv("INSIGHTS_GENERATIVE_ENABLED", false),
			APIKey:          getEnv("INSIGHTS_GEMINI_API_KEY", ""),
			Model:           getEnv("INSIGHTS_GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout:         getDurationEnv("INSIGHTS_GENERATIVE_TIMEOUT", 30*time.Second),
			Temperature:     getFloatEnv("INSIGHTS_GENERATIVE_TEMPERATURE", 0.7),
			MaxOutputTokens: getIntEnv("INSIGHTS_GENERATIVE_MAX_TOKENS", 2048),
			JSONMode:        getBoolEnv("INSIGHTS_GENERATIVE_JSON_MODE", true),
		},
		Analytics: AnalyticsConfig{
			UnitValue:    getFloatEnv("INSIGHTS_UNIT_VALUE", 100),
			CreativeTopN: getIntEnv("INSIGHTS_CREATIVE_TOP_N", 10),
			ChannelKey:   getEnv("INSIGHTS_CHANNEL_KEY", "channel_name"),
			CreativeKey:  getEnv("INSIGHTS_CREATIVE_KEY", "creative_id"),
			CampaignKey:  getEnv("INSIGHTS_CAMPAIGN_KEY", "campaign_id"),
			HistoryLimit: getIntEnv("INSIGHTS_HISTORY_LIMIT", 10),
			HistoryDays:  getIntEnv("INSIGHTS_HISTORY_DAYS", 90),
		},
		Model: ModelConfig{
			BudgetScale:     getFloatEnv("INSIGHTS_MODEL_BUDGET_SCALE", 1000),
			CTRBase:         getFloatEnv("INSIGHTS_MODEL_CTR_BASE", 0.9),
			CTRBudgetWeight: getFloatEnv("INSIGHTS_MODEL_CTR_BUDGET_WEIGHT", 0.2),
			ROIBase:         getFloatEnv("INSIGHTS_MODEL_ROI_BASE", 0.8),
			ROIBudgetWeight: getFloatEnv("INSIGHTS_MODEL_ROI_BUDGET_WEIGHT", 0.4),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Auth.Enabled && c.Auth.MasterKey == "" {
		return fmt.Errorf("INSIGHTS_API_KEY_MASTER is required when auth is enabled")
	}
	switch c.Storage.Records {
	case BackendMemory, BackendPostgres, BackendClickHouse:
	default:
		return fmt.Errorf("INSIGHTS_RECORD_STORE must be memory, postgres or clickhouse, got %q", c.Storage.Records)
	}
	switch c.Storage.Usage {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("INSIGHTS_USAGE_LEDGER must be memory or redis, got %q", c.Storage.Usage)
	}
	if c.Generative.Enabled && c.Generative.APIKey == "" {
		return fmt.Errorf("INSIGHTS_GEMINI_API_KEY is required when the generative service is enabled")
	}
	if c.Analytics.UnitValue <= 0 {
		return fmt.Errorf("INSIGHTS_UNIT_VALUE must be positive")
	}
	if c.Model.BudgetScale <= 0 {
		return fmt.Errorf("INSIGHTS_MODEL_BUDGET_SCALE must be positive")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getSliceEnv(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return def
}
