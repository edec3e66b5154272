package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radiusdt/campaign-insights/internal/config"
	"github.com/radiusdt/campaign-insights/internal/database"
	"github.com/radiusdt/campaign-insights/internal/insights"
	"github.com/radiusdt/campaign-insights/internal/metrics"
	"github.com/radiusdt/campaign-insights/internal/middleware"
	"github.com/radiusdt/campaign-insights/internal/storage"
)

// Dependencies holds all external dependencies for the server. DB, Redis
// and ClickHouse are optional and only used for health checks here.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB

	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; the default registry when nil.
	Gatherer prometheus.Gatherer

	Service *insights.Service
	// Store receives ingested rows when it implements storage.RecordWriter.
	Store       storage.RecordStore
	RateLimiter *middleware.RateLimitMiddleware
}

// Server wraps the HTTP handlers.
type Server struct {
	deps     *Dependencies
	service  *insights.Service
	validate *validator.Validate
	logger   *zap.Logger
	config   *config.Config
	now      func() time.Time
}

// NewServer constructs an http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		deps:     deps,
		service:  deps.Service,
		validate: validator.New(),
		logger:   logger,
		config:   deps.Config,
		now:      time.Now,
	}

	rl := deps.RateLimiter
	if rl == nil {
		rl = middleware.NewRateLimitMiddleware(deps.Config.RateLimit, logger, deps.Metrics)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.NewRecoveryMiddleware(logger).Handler,
		middleware.NewLoggingMiddleware(logger).Handler,
		middleware.NewMetricsMiddleware(deps.Metrics).Handler,
		middleware.NewAuthMiddleware(deps.Config.Auth, logger).Handler,
		rl.Handler,
	)

	r.Get("/health", s.handleHealth)
	if deps.Config.Metrics.Enabled {
		if deps.Gatherer != nil {
			r.Handle(deps.Config.Metrics.Path, metrics.HandlerFor(deps.Gatherer))
		} else {
			r.Handle(deps.Config.Metrics.Path, metrics.Handler())
		}
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/kpis", s.handleAggregate)
		r.Post("/normalize/{kind}", s.handleNormalize)
		r.Get("/usage", s.handleUsage)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Post("/rows", s.handleIngest)
			r.Get("/kpis", s.handleProjectKPIs)
			r.Post("/predict", s.handlePredict)
			r.Post("/analyze", s.handleAnalyze)
			r.Post("/optimize", s.handleOptimize)
		})
	})

	return r
}

// ---- Health ----

type healthCheck func(context.Context) error

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]healthCheck{}
	if s.deps.DB != nil {
		checks["postgres"] = s.deps.DB.Health
	}
	if s.deps.Redis != nil {
		checks["redis"] = s.deps.Redis.Health
	}
	if s.deps.ClickHouse != nil {
		checks["clickhouse"] = s.deps.ClickHouse.Health
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(checks))
		healthy = true
		g       errgroup.Group
	)
	for name, check := range checks {
		g.Go(func() error {
			status := "ok"
			if err := check(ctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = status
			if status != "ok" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	code, status := http.StatusOK, "ok"
	if !healthy {
		code, status = http.StatusServiceUnavailable, "degraded"
	}
	s.writeJSON(w, code, map[string]any{"status": status, "checks": results})
}

// ---- Helpers ----

func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	s.writeJSON(w, code, map[string]string{"error": message})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if s.config.Server.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorResponse(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
