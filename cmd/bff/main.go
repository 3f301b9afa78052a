package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/config"
	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/handler"
	"github.com/fintrack/fintrack-bff-go/internal/infra/cache"
	"github.com/fintrack/fintrack-bff-go/internal/infra/client"
	"github.com/fintrack/fintrack-bff-go/internal/infra/observability"
	"github.com/fintrack/fintrack-bff-go/internal/infra/resilience"
	"github.com/fintrack/fintrack-bff-go/internal/service"
	"github.com/fintrack/fintrack-bff-go/internal/session"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("finance_api_url", cfg.FinanceAPIURL),
		zap.String("prediction_api_url", cfg.PredictionAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "fintrack-bff")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	dashboardCache := cache.New[*domain.DashboardOverview](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	financeCB := resilience.NewCircuitBreaker("finance-api")
	predictionCB := resilience.NewCircuitBreaker("prediction-service")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	financeClient := client.NewFinanceClient(httpClient, cfg.FinanceAPIURL, financeCB, resilienceCfg)
	predictionClient := client.NewPredictionClient(httpClient, cfg.PredictionAPIURL, predictionCB, resilienceCfg)

	// --- Session store ---
	sessions, err := session.NewStore(cfg.SessionDBPath)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	defer sessions.Close()

	// Expired sessions are deleted lazily on load; this sweep keeps the
	// table from accumulating rows for users who never come back.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			n, err := sessions.PurgeExpired(context.Background())
			if err != nil {
				logger.Warn("session purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("expired sessions purged", zap.Int64("count", n))
			}
		}
	}()

	// --- Services ---
	svcs := handler.Services{
		Auth:         service.NewAuthService(financeClient, sessions, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.SessionTTL, logger),
		Dashboard:    service.NewDashboardService(financeClient, dashboardCache, metrics, logger),
		Transactions: service.NewTransactionService(financeClient, dashboardCache, logger),
		Budgets:      service.NewBudgetService(financeClient, logger),
		Goals:        service.NewGoalService(financeClient, dashboardCache, logger),
		Insights:     service.NewInsightsService(predictionClient, predictionClient, metrics, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, sessions, metrics, cfg.AllowedOrigins, logger)

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
