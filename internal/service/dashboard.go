package service

import (
	"context"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/finance"
	"github.com/fintrack/fintrack-bff-go/internal/infra/observability"
	"github.com/fintrack/fintrack-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

const dashboardCacheName = "dashboard"

func dashboardCacheKey(userID string) string {
	return "dashboard:" + userID
}

// DashboardService assembles the dashboard overview: the upstream
// summary snapshot plus aggregates derived from the full transaction
// list. Results are cached per user for a short TTL.
type DashboardService struct {
	store   port.FinanceStore
	cache   port.Cache[*domain.DashboardOverview]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store port.FinanceStore, cache port.Cache[*domain.DashboardOverview], metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// Overview returns the dashboard payload for a user. The upstream
// snapshot and the transaction list are fetched concurrently; the
// derived series are computed locally so the numbers always agree with
// each other.
func (s *DashboardService) Overview(ctx context.Context, token, userID string) (*domain.DashboardOverview, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Overview")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("dashboard_overview", time.Since(start)) }()

	key := dashboardCacheKey(userID)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit(dashboardCacheName)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}
	s.metrics.IncrCacheMiss(dashboardCacheName)

	var (
		summary *domain.DashboardSummary
		txns    []domain.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.store.GetDashboard(gctx, token, userID)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = s.store.ListTransactions(gctx, token, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("finance-api")
		return nil, err
	}

	overview := &domain.DashboardOverview{
		Summary:           summary,
		ExpenseByCategory: finance.ExpenseByCategory(txns),
		MonthlySeries:     finance.MonthlySeries(txns),
		CumulativeBalance: finance.CumulativeBalance(txns),
	}

	s.cache.Set(key, overview)
	s.logger.Debug("dashboard overview assembled",
		zap.String("user_id", userID),
		zap.Int("transactions", len(txns)),
	)
	return overview, nil
}

// Invalidate drops the cached overview for a user. Mutating services
// call this so the next dashboard read reflects the change.
func (s *DashboardService) Invalidate(userID string) {
	s.cache.Delete(dashboardCacheKey(userID))
}
