package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Transactions — /v1/transactions
// ============================================================

func listTransactionsHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		sess := SessionFromContext(ctx)
		page, pageSize := parsePagination(r)

		q := r.URL.Query()
		filter := domain.TransactionFilter{
			Type:     q.Get("type"),
			Category: q.Get("category"),
			Status:   q.Get("status"),
			Month:    q.Get("month"),
		}

		resp, err := svc.List(ctx, sess.UpstreamToken, sess.UserID, filter, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func addTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var req domain.NewTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := SessionFromContext(ctx)
		created, err := svc.Add(ctx, sess.UpstreamToken, sess.UserID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

func changeTransactionStatusHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/transactions/{transactionId}/status")
		defer span.End()

		id, err := parseIDParam(r, "transactionId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess := SessionFromContext(ctx)
		updated, err := svc.ChangeStatus(ctx, sess.UpstreamToken, sess.UserID, id, req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{transactionId}")
		defer span.End()

		id, err := parseIDParam(r, "transactionId")
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		sess := SessionFromContext(ctx)
		if err := svc.Delete(ctx, sess.UpstreamToken, sess.UserID, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "transaction deleted"})
	}
}
