package service

import (
	"context"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/finance"
	"github.com/fintrack/fintrack-bff-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var budgetTracer = otel.Tracer("service/budgets")

// BudgetService manages spending budgets. Budgets live upstream; the
// BFF annotates them with progress and keeps the upstream spent figure
// in line with the transaction history via Sync.
type BudgetService struct {
	store  port.FinanceStore
	logger *zap.Logger
}

// NewBudgetService creates a new budget service.
func NewBudgetService(store port.FinanceStore, logger *zap.Logger) *BudgetService {
	return &BudgetService{store: store, logger: logger}
}

func budgetView(b domain.Budget) domain.BudgetView {
	progress := finance.Progress(b.Amount, b.SpentAmount)
	return domain.BudgetView{
		Budget:   b,
		Progress: progress,
		Status:   finance.Status(progress),
	}
}

// List returns the user's budgets annotated with progress. A user with
// no budgets gets an empty list, not an error.
func (s *BudgetService) List(ctx context.Context, token, userID string) ([]domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	budgets, err := s.store.ListBudgets(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.BudgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, budgetView(b))
	}
	return views, nil
}

// Get returns a single budget annotated with progress.
func (s *BudgetService) Get(ctx context.Context, token, userID string, budgetID int64) (*domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Get")
	defer span.End()

	b, err := s.store.GetBudget(ctx, token, userID, budgetID)
	if err != nil {
		return nil, err
	}
	view := budgetView(*b)
	return &view, nil
}

// Create validates and creates a budget. BudgetType defaults to monthly.
func (s *BudgetService) Create(ctx context.Context, token, userID string, b *domain.Budget) (*domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Create")
	defer span.End()

	if b.Category == "" {
		return nil, &domain.ErrValidation{Field: "category", Message: "required"}
	}
	if b.Amount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if b.BudgetType == "" {
		b.BudgetType = domain.BudgetMonthly
	}
	if b.BudgetType != domain.BudgetMonthly && b.BudgetType != domain.BudgetYearly {
		return nil, &domain.ErrValidation{Field: "budgetType", Message: "must be monthly or yearly"}
	}

	created, err := s.store.CreateBudget(ctx, token, userID, b)
	if err != nil {
		return nil, err
	}

	s.logger.Info("budget created",
		zap.String("user_id", userID),
		zap.Int64("budget_id", created.ID),
		zap.String("category", created.Category),
	)
	view := budgetView(*created)
	return &view, nil
}

// Update replaces a budget's fields.
func (s *BudgetService) Update(ctx context.Context, token, userID string, budgetID int64, b *domain.Budget) (*domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Update")
	defer span.End()

	if b.Amount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	updated, err := s.store.UpdateBudget(ctx, token, userID, budgetID, b)
	if err != nil {
		return nil, err
	}
	view := budgetView(*updated)
	return &view, nil
}

// Delete removes a budget.
func (s *BudgetService) Delete(ctx context.Context, token, userID string, budgetID int64) error {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Delete")
	defer span.End()

	return s.store.DeleteBudget(ctx, token, userID, budgetID)
}

// SetSpent overwrites the spent amount of a budget.
func (s *BudgetService) SetSpent(ctx context.Context, token, userID string, budgetID int64, spent decimal.Decimal) (*domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.SetSpent")
	defer span.End()

	if spent.Sign() < 0 {
		return nil, &domain.ErrValidation{Field: "spentAmount", Message: "must not be negative"}
	}

	updated, err := s.store.SetSpentAmount(ctx, token, userID, budgetID, spent)
	if err != nil {
		return nil, err
	}
	view := budgetView(*updated)
	return &view, nil
}

// AddSpent increments the spent amount of a budget.
func (s *BudgetService) AddSpent(ctx context.Context, token, userID string, budgetID int64, amount decimal.Decimal) (*domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.AddSpent")
	defer span.End()

	if amount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	updated, err := s.store.AddSpentAmount(ctx, token, userID, budgetID, amount)
	if err != nil {
		return nil, err
	}
	view := budgetView(*updated)
	return &view, nil
}

// Sync recomputes a budget's spent amount from the transaction history
// over the current reset window and pushes the figure upstream. The
// transaction list is the source of truth; the upstream counter only
// mirrors it.
func (s *BudgetService) Sync(ctx context.Context, token, userID string, budgetID int64) (*domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Sync")
	defer span.End()

	b, err := s.store.GetBudget(ctx, token, userID, budgetID)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactions(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	start, end := finance.ResetWindow(b.BudgetType, time.Now())
	spent := finance.SpentInWindow(txns, b.Category, start, end)

	updated, err := s.store.SetSpentAmount(ctx, token, userID, budgetID, spent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("budget synced",
		zap.String("user_id", userID),
		zap.Int64("budget_id", budgetID),
		zap.String("spent", spent.String()),
	)
	view := budgetView(*updated)
	return &view, nil
}

// SyncAll recomputes every budget for the user in one pass over the
// transaction list.
func (s *BudgetService) SyncAll(ctx context.Context, token, userID string) ([]domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.SyncAll")
	defer span.End()

	budgets, err := s.store.ListBudgets(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactions(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]domain.BudgetView, 0, len(budgets))
	for _, b := range budgets {
		start, end := finance.ResetWindow(b.BudgetType, now)
		spent := finance.SpentInWindow(txns, b.Category, start, end)

		updated, err := s.store.SetSpentAmount(ctx, token, userID, b.ID, spent)
		if err != nil {
			return nil, err
		}
		views = append(views, budgetView(*updated))
	}
	return views, nil
}

// Reset zeroes a budget's spent amount and stamps the reset date.
func (s *BudgetService) Reset(ctx context.Context, token, userID string, budgetID int64) (*domain.BudgetView, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Reset")
	defer span.End()

	updated, err := s.store.ResetBudget(ctx, token, userID, budgetID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("budget reset",
		zap.String("user_id", userID),
		zap.Int64("budget_id", budgetID),
	)
	view := budgetView(*updated)
	return &view, nil
}
