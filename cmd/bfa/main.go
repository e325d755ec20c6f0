package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/erp-finance-bfa/internal/config"
	"github.com/boddenberg/erp-finance-bfa/internal/domain"
	"github.com/boddenberg/erp-finance-bfa/internal/handler"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/cache"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/erp"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/observability"
	"github.com/boddenberg/erp-finance-bfa/internal/infra/resilience"
	"github.com/boddenberg/erp-finance-bfa/internal/service"

	"go.uber.org/zap"
)

const serviceName = "erp-finance-bfa"

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel, serviceName)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("erp_api_url", cfg.ERPAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("tracing_enabled", cfg.TracingEnabled),
		zap.Bool("enforce_account_classes", cfg.EnforceAccountClasses),
		zap.Strings("cors_allowed_origins", cfg.CORSAllowedOrigins),
	)
	if cfg.UsesDevSecret() {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.TracingEnabled)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	accountCache := cache.New[[]domain.Account](cfg.CacheTTL)
	defer accountCache.Close()
	categoryCache := cache.New[[]domain.Category](cfg.CacheTTL)
	defer categoryCache.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("erp-api", erp.BreakerSuccess)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	erpClient := erp.NewClient(httpClient, cfg.ERPAPIURL, cb, resilienceCfg, logger)

	// --- Services ---
	authSvc := service.NewAuthService(erpClient, cfg.JWTSecret, logger)
	financeSvc := service.NewFinanceService(erpClient, accountCache, categoryCache, metrics, logger,
		service.WithAccountClassCheck(cfg.EnforceAccountClasses),
	)
	hrSvc := service.NewHRService(erpClient, metrics, logger, nil)
	periodSvc := service.NewPeriodService(nil)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:    authSvc,
		Finance: financeSvc,
		HR:      hrSvc,
		Periods: periodSvc,
		ERP:     erpClient,
	}, metrics, cfg.CORSAllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
