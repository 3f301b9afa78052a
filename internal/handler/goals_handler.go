package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Savings goals — /v1/goals
// ============================================================

func listGoalsHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/goals")
		defer span.End()

		sess := SessionFromContext(ctx)
		views, err := svc.List(ctx, sess.UpstreamToken, sess.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, views)
	}
}

func createGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/goals")
		defer span.End()

		var g domain.SavingsGoal
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.Create(ctx, sess.UpstreamToken, sess.UserID, &g)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, view)
	}
}

func addSavedAmountHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/goals/{goalId}/add-saved-amount")
		defer span.End()

		id, err := parseIDParam(r, "goalId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req domain.AddAmountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.AddAmount(ctx, sess.UpstreamToken, sess.UserID, id, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func deleteGoalHandler(svc *service.GoalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/goals/{goalId}")
		defer span.End()

		id, err := parseIDParam(r, "goalId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sess := SessionFromContext(ctx)
		if err := svc.Delete(ctx, sess.UpstreamToken, sess.UserID, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "goal deleted"})
	}
}
