package handler

import (
	"net/http"

	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard — GET /v1/dashboard
// ============================================================

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		sess := SessionFromContext(ctx)
		overview, err := svc.Overview(ctx, sess.UpstreamToken, sess.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, overview)
	}
}
