package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Budgets — /v1/budgets
// ============================================================

func listBudgetsHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets")
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

func getBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/budgets/{budgetId}")
		defer span.End()

		id, err := parseIDParam(r, "budgetId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.Get(ctx, sess.UpstreamToken, sess.UserID, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func createBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets")
		defer span.End()

		var b domain.Budget
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.Create(ctx, sess.UpstreamToken, sess.UserID, &b)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, view)
	}
}

func updateBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/budgets/{budgetId}")
		defer span.End()

		id, err := parseIDParam(r, "budgetId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var b domain.Budget
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.Update(ctx, sess.UpstreamToken, sess.UserID, id, &b)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func deleteBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/budgets/{budgetId}")
		defer span.End()

		id, err := parseIDParam(r, "budgetId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sess := SessionFromContext(ctx)
		if err := svc.Delete(ctx, sess.UpstreamToken, sess.UserID, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "budget deleted"})
	}
}

func setSpentHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/budgets/{budgetId}/spent")
		defer span.End()

		id, err := parseIDParam(r, "budgetId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req domain.SpentUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SpentAmount == nil {
			writeError(w, http.StatusBadRequest, "spentAmount is required")
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.SetSpent(ctx, sess.UpstreamToken, sess.UserID, id, *req.SpentAmount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func addSpentHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets/{budgetId}/spent/add")
		defer span.End()

		id, err := parseIDParam(r, "budgetId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req domain.SpentUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Amount == nil {
			writeError(w, http.StatusBadRequest, "amount is required")
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.AddSpent(ctx, sess.UpstreamToken, sess.UserID, id, *req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func syncBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets/{budgetId}/sync")
		defer span.End()

		id, err := parseIDParam(r, "budgetId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.Sync(ctx, sess.UpstreamToken, sess.UserID, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func syncAllBudgetsHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets/sync")
		defer span.End()

		sess := SessionFromContext(ctx)
		views, err := svc.SyncAll(ctx, sess.UpstreamToken, sess.UserID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, views)
	}
}

func resetBudgetHandler(svc *service.BudgetService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/budgets/{budgetId}/reset")
		defer span.End()

		id, err := parseIDParam(r, "budgetId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sess := SessionFromContext(ctx)
		view, err := svc.Reset(ctx, sess.UpstreamToken, sess.UserID, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}
