package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radiusdt/campaign-insights/internal/bootstrap"
	"github.com/radiusdt/campaign-insights/internal/config"
	"github.com/radiusdt/campaign-insights/internal/httpserver"
	"github.com/radiusdt/campaign-insights/internal/metrics"
	"github.com/radiusdt/campaign-insights/internal/middleware"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Can't use logger yet, fall back to standard log
		panic("failed to load config: " + err.Error())
	}

	logger, err := middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer logger.Sync()

	logger.Info("starting campaign insights API",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
		zap.String("record_store", cfg.Storage.Records),
		zap.String("usage_ledger", cfg.Storage.Usage),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)

	backends := bootstrap.Open(ctx, cfg, logger)
	defer backends.Close()

	if backends.DB != nil {
		go backends.DB.ReportStats(ctx, m, 15*time.Second)
	}

	rateLimitMW := middleware.NewRateLimitMiddleware(cfg.RateLimit, logger, m)

	deps := &httpserver.Dependencies{
		DB:          backends.DB,
		Redis:       backends.Redis,
		ClickHouse:  backends.ClickHouse,
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		Service:     bootstrap.NewService(ctx, cfg, backends, logger, m),
		Store:       backends.Records,
		RateLimiter: rateLimitMW,
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpserver.NewServer(deps),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generative routes wait on the upstream service.
		WriteTimeout:   cfg.Generative.Timeout + 15*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rateLimitMW.CleanupIPLimiters()
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Stop background goroutines
	cancel()

	logger.Info("server stopped")
}
