// Package handler wires the HTTP surface: routing, middleware, and the
// translation between HTTP and the service layer.
package handler

import (
	"net/http"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/infra/observability"
	"github.com/fintrack/fintrack-bff-go/internal/port"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services groups the service-layer dependencies of the router.
type Services struct {
	Auth         *service.AuthService
	Dashboard    *service.DashboardService
	Transactions *service.TransactionService
	Budgets      *service.BudgetService
	Goals        *service.GoalService
	Insights     *service.InsightsService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /v1 except auth signup/login requires a Bearer token.
func NewRouter(svcs Services, sessions port.SessionStore, metrics *observability.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(sessions, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Auth: signup and login are public, logout needs a session.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authSignupHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, sessions, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// Everything else requires an authenticated session.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, sessions, logger))

			// Dashboard
			r.Get("/dashboard", dashboardHandler(svcs.Dashboard, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(svcs.Transactions, logger))
			r.Post("/transactions", addTransactionHandler(svcs.Transactions, logger))
			r.Patch("/transactions/{transactionId}/status", changeTransactionStatusHandler(svcs.Transactions, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(svcs.Transactions, logger))

			// Budgets
			r.Get("/budgets", listBudgetsHandler(svcs.Budgets, logger))
			r.Post("/budgets", createBudgetHandler(svcs.Budgets, logger))
			r.Post("/budgets/sync", syncAllBudgetsHandler(svcs.Budgets, logger))
			r.Get("/budgets/{budgetId}", getBudgetHandler(svcs.Budgets, logger))
			r.Put("/budgets/{budgetId}", updateBudgetHandler(svcs.Budgets, logger))
			r.Delete("/budgets/{budgetId}", deleteBudgetHandler(svcs.Budgets, logger))
			r.Patch("/budgets/{budgetId}/spent", setSpentHandler(svcs.Budgets, logger))
			r.Post("/budgets/{budgetId}/spent/add", addSpentHandler(svcs.Budgets, logger))
			r.Post("/budgets/{budgetId}/sync", syncBudgetHandler(svcs.Budgets, logger))
			r.Post("/budgets/{budgetId}/reset", resetBudgetHandler(svcs.Budgets, logger))

			// Savings goals
			r.Get("/goals", listGoalsHandler(svcs.Goals, logger))
			r.Post("/goals", createGoalHandler(svcs.Goals, logger))
			r.Put("/goals/{goalId}/add-saved-amount", addSavedAmountHandler(svcs.Goals, logger))
			r.Delete("/goals/{goalId}", deleteGoalHandler(svcs.Goals, logger))

			// Insights
			r.Post("/insights/forecast", forecastHandler(svcs.Insights, logger))
			r.Post("/insights/anomalies", anomaliesHandler(svcs.Insights, logger))
			r.Post("/chat", chatHandler(svcs.Insights, logger))

			// Counter snapshot
			r.Get("/metrics/insights", insightsMetricsHandler(svcs.Insights))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(sessions port.SessionStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "fintrack-bff", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if sessions != nil {
			start := time.Now()
			_, err := sessions.Load(r.Context(), "health-check")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				logger.Warn("healthz: session store check failed", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "session-store", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overall = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
