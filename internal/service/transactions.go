package service

import (
	"context"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/finance"
	"github.com/fintrack/fintrack-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var txTracer = otel.Tracer("service/transactions")

// TransactionService manages the transaction list: filtering and
// pagination happen locally over the full list fetched from the
// finance API, mutations are written through.
type TransactionService struct {
	store      port.FinanceStore
	dashboards port.Cache[*domain.DashboardOverview]
	logger     *zap.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(store port.FinanceStore, dashboards port.Cache[*domain.DashboardOverview], logger *zap.Logger) *TransactionService {
	return &TransactionService{store: store, dashboards: dashboards, logger: logger}
}

// List returns the user's transactions, newest first, narrowed by the
// filter and paginated.
func (s *TransactionService) List(ctx context.Context, token, userID string, filter domain.TransactionFilter, page, pageSize int) (*domain.ListResponse[domain.Transaction], error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	txns, err := s.store.ListTransactions(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	filtered := finance.Filter(txns, filter)
	pageItems := finance.Paginate(filtered, page, pageSize)
	if pageItems == nil {
		pageItems = []domain.Transaction{}
	}

	return &domain.ListResponse[domain.Transaction]{
		Data:     pageItems,
		Total:    len(filtered),
		Page:     page,
		PageSize: pageSize,
		HasMore:  page*pageSize < len(filtered),
	}, nil
}

// Add records a new transaction. Date defaults to now and status to
// completed when omitted.
func (s *TransactionService) Add(ctx context.Context, token, userID string, req *domain.NewTransactionRequest) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.Add")
	defer span.End()

	if req.Amount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.Type != domain.TypeIncome && req.Type != domain.TypeExpense {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be INCOME or EXPENSE"}
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	status := req.Status
	if status == "" {
		status = domain.StatusCompleted
	}
	if status != domain.StatusPending && status != domain.StatusCompleted {
		return nil, &domain.ErrValidation{Field: "status", Message: "must be pending or completed"}
	}

	tx := &domain.Transaction{
		Amount:        req.Amount,
		Category:      req.Category,
		Description:   req.Description,
		Type:          req.Type,
		Date:          date,
		Status:        status,
		PaymentMethod: req.PaymentMethod,
	}

	created, err := s.store.AddTransaction(ctx, token, tx)
	if err != nil {
		return nil, err
	}

	s.dashboards.Delete(dashboardCacheKey(userID))
	s.logger.Info("transaction added",
		zap.String("user_id", userID),
		zap.Int64("transaction_id", created.ID),
		zap.String("type", created.Type),
	)
	return created, nil
}

// ChangeStatus flips a transaction between pending and completed.
func (s *TransactionService) ChangeStatus(ctx context.Context, token, userID string, transactionID int64, status string) (*domain.Transaction, error) {
	ctx, span := txTracer.Start(ctx, "TransactionService.ChangeStatus")
	defer span.End()

	if status != domain.StatusPending && status != domain.StatusCompleted {
		return nil, &domain.ErrValidation{Field: "status", Message: "must be pending or completed"}
	}

	updated, err := s.store.UpdateTransactionStatus(ctx, token, transactionID, status)
	if err != nil {
		return nil, err
	}

	s.dashboards.Delete(dashboardCacheKey(userID))
	return updated, nil
}

// Delete removes a transaction.
func (s *TransactionService) Delete(ctx context.Context, token, userID string, transactionID int64) error {
	ctx, span := txTracer.Start(ctx, "TransactionService.Delete")
	defer span.End()

	if err := s.store.DeleteTransaction(ctx, token, transactionID); err != nil {
		return err
	}

	s.dashboards.Delete(dashboardCacheKey(userID))
	s.logger.Info("transaction deleted",
		zap.String("user_id", userID),
		zap.Int64("transaction_id", transactionID),
	)
	return nil
}
