package service_test

import (
	"context"
	"fmt"

	"github.com/fintrack/fintrack-bff-go/internal/domain"

	"github.com/shopspring/decimal"
)

// --- Mocks ---

// mockFinanceStore is an in-memory stand-in for the finance API. Canned
// data goes in the exported-ish fields; mutations are recorded so tests
// can assert on them. A non-nil err fails every call.
type mockFinanceStore struct {
	dashboard *domain.DashboardSummary
	txns      []domain.Transaction
	budgets   []domain.Budget
	goals     []domain.SavingsGoal
	err       error

	addedTxns    []domain.Transaction
	deletedTxns  []int64
	spentSet     map[int64]decimal.Decimal
	deletedGoals []int64
	nextID       int64
}

func (m *mockFinanceStore) allocID() int64 {
	m.nextID++
	return m.nextID + 1000
}

func (m *mockFinanceStore) GetDashboard(_ context.Context, _, _ string) (*domain.DashboardSummary, error) {
	return m.dashboard, m.err
}

func (m *mockFinanceStore) ListTransactions(_ context.Context, _, _ string) ([]domain.Transaction, error) {
	return m.txns, m.err
}

func (m *mockFinanceStore) AddTransaction(_ context.Context, _ string, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	created := *tx
	created.ID = m.allocID()
	m.addedTxns = append(m.addedTxns, created)
	return &created, nil
}

func (m *mockFinanceStore) UpdateTransactionStatus(_ context.Context, _ string, transactionID int64, status string) (*domain.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.txns {
		if m.txns[i].ID == transactionID {
			m.txns[i].Status = status
			return &m.txns[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: fmt.Sprintf("%d", transactionID)}
}

func (m *mockFinanceStore) DeleteTransaction(_ context.Context, _ string, transactionID int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletedTxns = append(m.deletedTxns, transactionID)
	return nil
}

func (m *mockFinanceStore) ListBudgets(_ context.Context, _, _ string) ([]domain.Budget, error) {
	return m.budgets, m.err
}

func (m *mockFinanceStore) GetBudget(_ context.Context, _, _ string, budgetID int64) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.budgets {
		if m.budgets[i].ID == budgetID {
			return &m.budgets[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "budget", ID: fmt.Sprintf("%d", budgetID)}
}

func (m *mockFinanceStore) CreateBudget(_ context.Context, _, _ string, b *domain.Budget) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	created := *b
	created.ID = m.allocID()
	m.budgets = append(m.budgets, created)
	return &created, nil
}

func (m *mockFinanceStore) UpdateBudget(_ context.Context, _, _ string, budgetID int64, b *domain.Budget) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	updated := *b
	updated.ID = budgetID
	return &updated, nil
}

func (m *mockFinanceStore) DeleteBudget(_ context.Context, _, _ string, _ int64) error {
	return m.err
}

func (m *mockFinanceStore) SetSpentAmount(_ context.Context, _, _ string, budgetID int64, spent decimal.Decimal) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.spentSet == nil {
		m.spentSet = make(map[int64]decimal.Decimal)
	}
	m.spentSet[budgetID] = spent
	for i := range m.budgets {
		if m.budgets[i].ID == budgetID {
			m.budgets[i].SpentAmount = spent
			return &m.budgets[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "budget", ID: fmt.Sprintf("%d", budgetID)}
}

func (m *mockFinanceStore) AddSpentAmount(_ context.Context, _, _ string, budgetID int64, amount decimal.Decimal) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.budgets {
		if m.budgets[i].ID == budgetID {
			m.budgets[i].SpentAmount = m.budgets[i].SpentAmount.Add(amount)
			return &m.budgets[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "budget", ID: fmt.Sprintf("%d", budgetID)}
}

func (m *mockFinanceStore) ResetBudget(_ context.Context, _, _ string, budgetID int64) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.budgets {
		if m.budgets[i].ID == budgetID {
			m.budgets[i].SpentAmount = decimal.Zero
			return &m.budgets[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "budget", ID: fmt.Sprintf("%d", budgetID)}
}

func (m *mockFinanceStore) ListGoals(_ context.Context, _, _ string) ([]domain.SavingsGoal, error) {
	return m.goals, m.err
}

func (m *mockFinanceStore) CreateGoal(_ context.Context, _, _ string, g *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	if m.err != nil {
		return nil, m.err
	}
	created := *g
	created.ID = m.allocID()
	m.goals = append(m.goals, created)
	return &created, nil
}

func (m *mockFinanceStore) AddSavedAmount(_ context.Context, _ string, goalID int64, amount decimal.Decimal) (*domain.SavingsGoal, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.goals {
		if m.goals[i].ID == goalID {
			m.goals[i].SavedAmount = m.goals[i].SavedAmount.Add(amount)
			return &m.goals[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "goal", ID: fmt.Sprintf("%d", goalID)}
}

func (m *mockFinanceStore) DeleteGoal(_ context.Context, _ string, goalID int64) error {
	if m.err != nil {
		return m.err
	}
	m.deletedGoals = append(m.deletedGoals, goalID)
	return nil
}

type mockAuthenticator struct {
	result    *domain.UpstreamLoginResult
	loginErr  error
	signupErr error
}

func (m *mockAuthenticator) Login(_ context.Context, _ *domain.LoginRequest) (*domain.UpstreamLoginResult, error) {
	return m.result, m.loginErr
}

func (m *mockAuthenticator) Signup(_ context.Context, _ *domain.SignupRequest) error {
	return m.signupErr
}

type mockSessionStore struct {
	saved        []*domain.Session
	deletedUsers []string
	err          error
}

func (m *mockSessionStore) Save(_ context.Context, s *domain.Session) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *mockSessionStore) Load(_ context.Context, sessionID string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, s := range m.saved {
		if s.ID == sessionID {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSessionStore) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSessionStore) DeleteByUser(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedUsers = append(m.deletedUsers, userID)
	return nil
}

type mockPredictor struct {
	forecast  *domain.ExpenseForecast
	anomalies []domain.Anomaly
	err       error
}

func (m *mockPredictor) PredictExpense(_ context.Context, _, _ string) (*domain.ExpenseForecast, error) {
	return m.forecast, m.err
}

func (m *mockPredictor) DetectAnomalies(_ context.Context, _, _ string) ([]domain.Anomaly, error) {
	return m.anomalies, m.err
}

type mockChatter struct {
	reply string
	err   error
}

func (m *mockChatter) Chat(_ context.Context, _ string) (string, error) {
	return m.reply, m.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
