package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Insights — /v1/insights, /v1/chat, /v1/metrics/insights
// ============================================================

func forecastHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/insights/forecast")
		defer span.End()

		sess := SessionFromContext(ctx)
		forecast, err := svc.Forecast(ctx, sess.UpstreamToken, sess.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, forecast)
	}
}

func anomaliesHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/insights/anomalies")
		defer span.End()

		sess := SessionFromContext(ctx)
		anomalies, err := svc.Anomalies(ctx, sess.UpstreamToken, sess.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, anomalies)
	}
}

func chatHandler(svc *service.InsightsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.Chat(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func insightsMetricsHandler(svc *service.InsightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Metrics())
	}
}
