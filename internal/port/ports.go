// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from concrete HTTP clients and stores.
package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
)

// FinanceStore is the upstream finance API: the system of record for
// transactions, budgets, goals and the dashboard snapshot. Every call
// carries the upstream bearer token obtained at login.
type FinanceStore interface {
	// Dashboard
	GetDashboard(ctx context.Context, token, userID string) (*domain.DashboardSummary, error)

	// Transactions
	ListTransactions(ctx context.Context, token, userID string) ([]domain.Transaction, error)
	AddTransaction(ctx context.Context, token string, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, token string, transactionID int64, status string) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, token string, transactionID int64) error

	// Budgets
	ListBudgets(ctx context.Context, token, userID string) ([]domain.Budget, error)
	GetBudget(ctx context.Context, token, userID string, budgetID int64) (*domain.Budget, error)
	CreateBudget(ctx context.Context, token, userID string, b *domain.Budget) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, token, userID string, budgetID int64, b *domain.Budget) (*domain.Budget, error)
	DeleteBudget(ctx context.Context, token, userID string, budgetID int64) error
	SetSpentAmount(ctx context.Context, token, userID string, budgetID int64, spent decimal.Decimal) (*domain.Budget, error)
	AddSpentAmount(ctx context.Context, token, userID string, budgetID int64, amount decimal.Decimal) (*domain.Budget, error)
	ResetBudget(ctx context.Context, token, userID string, budgetID int64) (*domain.Budget, error)

	// Goals
	ListGoals(ctx context.Context, token, userID string) ([]domain.SavingsGoal, error)
	CreateGoal(ctx context.Context, token, userID string, g *domain.SavingsGoal) (*domain.SavingsGoal, error)
	AddSavedAmount(ctx context.Context, token string, goalID int64, amount decimal.Decimal) (*domain.SavingsGoal, error)
	DeleteGoal(ctx context.Context, token string, goalID int64) error
}

// Authenticator performs credential checks against the finance API.
type Authenticator interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.UpstreamLoginResult, error)
	Signup(ctx context.Context, req *domain.SignupRequest) error
}

// Predictor calls the prediction service for forecasts and anomalies.
type Predictor interface {
	PredictExpense(ctx context.Context, token, userID string) (*domain.ExpenseForecast, error)
	DetectAnomalies(ctx context.Context, token, userID string) ([]domain.Anomaly, error)
}

// Chatter asks the advisor chatbot for a reply.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// SessionStore persists sessions with explicit save/load/clear semantics.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Load(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
}
