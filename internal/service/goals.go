package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/finance"
	"github.com/fintrack/fintrack-bff-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var goalTracer = otel.Tracer("service/goals")

// Categories of the bookkeeping transactions that mirror goal moves in
// the transaction history.
const (
	goalContributionCategory = "Savings Contribution"
	goalReclaimCategory      = "Savings Reclaim"
	goalPaymentMethod        = "System Credits"
)

// GoalService manages savings goals. Money moved into a goal is
// mirrored as an expense transaction; deleting a goal with funds
// reclaims them as income, so the running balance stays honest.
type GoalService struct {
	store      port.FinanceStore
	dashboards port.Cache[*domain.DashboardOverview]
	logger     *zap.Logger
}

// NewGoalService creates a new goal service.
func NewGoalService(store port.FinanceStore, dashboards port.Cache[*domain.DashboardOverview], logger *zap.Logger) *GoalService {
	return &GoalService{store: store, dashboards: dashboards, logger: logger}
}

func goalView(g domain.SavingsGoal) domain.GoalView {
	return domain.GoalView{
		SavingsGoal: g,
		Progress:    finance.Progress(g.TargetAmount, g.SavedAmount),
	}
}

// List returns the user's goals annotated with progress.
func (s *GoalService) List(ctx context.Context, token, userID string) ([]domain.GoalView, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	goals, err := s.store.ListGoals(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, goalView(g))
	}
	return views, nil
}

// Create validates and creates a goal.
func (s *GoalService) Create(ctx context.Context, token, userID string, g *domain.SavingsGoal) (*domain.GoalView, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.Create")
	defer span.End()

	if g.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if g.TargetAmount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "targetAmount", Message: "must be positive"}
	}

	created, err := s.store.CreateGoal(ctx, token, userID, g)
	if err != nil {
		return nil, err
	}

	s.logger.Info("goal created",
		zap.String("user_id", userID),
		zap.Int64("goal_id", created.ID),
		zap.String("name", created.Name),
	)
	view := goalView(*created)
	return &view, nil
}

// AddAmount moves money into a goal and records the matching expense
// transaction. Only positive amounts are accepted; funds never leave a
// goal except through deletion.
func (s *GoalService) AddAmount(ctx context.Context, token, userID string, goalID int64, amount decimal.Decimal) (*domain.GoalView, error) {
	ctx, span := goalTracer.Start(ctx, "GoalService.AddAmount")
	defer span.End()
	span.SetAttributes(attribute.Int64("goal.id", goalID))

	if amount.Sign() <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	updated, err := s.store.AddSavedAmount(ctx, token, goalID, amount)
	if err != nil {
		return nil, err
	}

	contribution := &domain.Transaction{
		Amount:        amount,
		Category:      goalContributionCategory,
		Description:   fmt.Sprintf("Transferred to Goal: %s", updated.Name),
		Type:          domain.TypeExpense,
		Date:          time.Now(),
		Status:        domain.StatusCompleted,
		PaymentMethod: goalPaymentMethod,
	}
	if _, err := s.store.AddTransaction(ctx, token, contribution); err != nil {
		// The goal balance already moved; surface the inconsistency loudly.
		s.logger.Error("failed to record goal contribution transaction",
			zap.String("user_id", userID),
			zap.Int64("goal_id", goalID),
			zap.Error(err),
		)
		return nil, err
	}

	s.dashboards.Delete(dashboardCacheKey(userID))
	s.logger.Info("goal contribution added",
		zap.String("user_id", userID),
		zap.Int64("goal_id", goalID),
		zap.String("amount", amount.String()),
	)
	view := goalView(*updated)
	return &view, nil
}

// Delete removes a goal. Saved funds, if any, flow back into the
// transaction history as income before the goal disappears.
func (s *GoalService) Delete(ctx context.Context, token, userID string, goalID int64) error {
	ctx, span := goalTracer.Start(ctx, "GoalService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("goal.id", goalID))

	goal, err := s.findGoal(ctx, token, userID, goalID)
	if err != nil {
		return err
	}

	if goal.SavedAmount.Sign() > 0 {
		reclaim := &domain.Transaction{
			Amount:        goal.SavedAmount,
			Category:      goalReclaimCategory,
			Description:   fmt.Sprintf("Reclaimed funds from deleted goal: %s", goal.Name),
			Type:          domain.TypeIncome,
			Date:          time.Now(),
			Status:        domain.StatusCompleted,
			PaymentMethod: goalPaymentMethod,
		}
		if _, err := s.store.AddTransaction(ctx, token, reclaim); err != nil {
			return fmt.Errorf("record reclaim transaction: %w", err)
		}
	}

	if err := s.store.DeleteGoal(ctx, token, goalID); err != nil {
		return err
	}

	s.dashboards.Delete(dashboardCacheKey(userID))
	s.logger.Info("goal deleted",
		zap.String("user_id", userID),
		zap.Int64("goal_id", goalID),
		zap.String("reclaimed", goal.SavedAmount.String()),
	)
	return nil
}

func (s *GoalService) findGoal(ctx context.Context, token, userID string, goalID int64) (*domain.SavingsGoal, error) {
	goals, err := s.store.ListGoals(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		if goals[i].ID == goalID {
			return &goals[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "goal", ID: fmt.Sprintf("%d", goalID)}
}
