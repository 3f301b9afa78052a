package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Transactions
// ============================================================

// Transaction type tags as returned by the finance API.
const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

// Transaction status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// UncategorizedLabel is the bucket for transactions without a category.
const UncategorizedLabel = "Uncategorized"

// Transaction is a single income or expense record owned by the finance API.
// Amount is always non-negative; Type says which direction it flows.
type Transaction struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	Type          string          `json:"type"` // INCOME or EXPENSE
	Date          time.Time       `json:"date"`
	Status        string          `json:"status"`        // pending or completed
	PaymentMethod string          `json:"paymentMethod"` // e.g. "credit card", "bank transfer"
}

// NewTransactionRequest is the body of POST /v1/transactions.
type NewTransactionRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	Type          string          `json:"type"`
	Date          *time.Time      `json:"date,omitempty"`
	Status        string          `json:"status,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

// TransactionFilter narrows an in-memory transaction list.
// Zero-valued fields match everything.
type TransactionFilter struct {
	Type     string // INCOME or EXPENSE
	Category string
	Status   string
	Month    string // YYYY-MM
}

// ============================================================
// Budgets
// ============================================================

// Budget period kinds.
const (
	BudgetMonthly = "monthly"
	BudgetYearly  = "yearly"
)

// Budget tracks planned vs. actual spending for a category over a period.
// SpentAmount is server-maintained and may lag until a sync pushes the
// locally computed figure upstream.
type Budget struct {
	ID            int64           `json:"id"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	SpentAmount   decimal.Decimal `json:"spentAmount"`
	BudgetType    string          `json:"budgetType"` // monthly or yearly
	StartDate     *time.Time      `json:"startDate,omitempty"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	LastResetDate *time.Time      `json:"lastResetDate,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// BudgetView is a Budget annotated with derived progress fields for the UI.
type BudgetView struct {
	Budget
	Progress decimal.Decimal `json:"progress"` // 0..100
	Status   string          `json:"status"`   // under, on-track, near, over
}

// SpentUpdateRequest carries a spent-amount mutation for a budget.
type SpentUpdateRequest struct {
	SpentAmount *decimal.Decimal `json:"spentAmount,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// ============================================================
// Savings Goals
// ============================================================

// SavingsGoal is a named savings target. SavedAmount only grows under
// normal use; funds are reclaimed as income when the goal is deleted.
type SavingsGoal struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	SavedAmount  decimal.Decimal `json:"savedAmount"`
	TargetDate   *time.Time      `json:"targetDate,omitempty"`
	Description  string          `json:"description,omitempty"`
}

// GoalView is a SavingsGoal annotated with derived progress.
type GoalView struct {
	SavingsGoal
	Progress decimal.Decimal `json:"progress"` // 0..100
}

// AddAmountRequest is the body of PUT /v1/goals/{id}/add-saved-amount.
type AddAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ============================================================
// Dashboard
// ============================================================

// DashboardSummary is the server-computed aggregate snapshot.
type DashboardSummary struct {
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpense       decimal.Decimal `json:"totalExpense"`
	NetSavings         decimal.Decimal `json:"netSavings"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

// MonthlyPoint is one month of the income/expense series.
// Month is a locale-independent YYYY-MM key; display formatting is a UI concern.
type MonthlyPoint struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// BalancePoint is one entry of the cumulative running balance series.
type BalancePoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// DashboardOverview is the full dashboard payload: the upstream snapshot
// plus aggregates derived from the complete transaction list.
type DashboardOverview struct {
	Summary           *DashboardSummary          `json:"summary"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expenseByCategory"`
	MonthlySeries     []MonthlyPoint             `json:"monthlySeries"`
	CumulativeBalance []BalancePoint             `json:"cumulativeBalance"`
}

// ============================================================
// Insights (prediction service)
// ============================================================

// MonthAmount pairs a month label with an amount, as emitted by the
// prediction service.
type MonthAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseForecast is the response of POST /predict-expense.
type ExpenseForecast struct {
	PredictedNextMonths []MonthAmount   `json:"predicted_next_3_months_expense"`
	TotalPreviousMonths decimal.Decimal `json:"total_expense_previous_months"`
	PreviousMonths      []MonthAmount   `json:"previous_months_expense"`
}

// Anomaly is a single flagged expense from POST /detect-anomalies.
type Anomaly struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Overspent decimal.Decimal `json:"overspent"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ChatResponse is the advisor's reply.
type ChatResponse struct {
	ConversationID string `json:"conversationId"`
	Reply          string `json:"reply"`
}

// InsightsMetrics is returned by GET /v1/metrics/insights.
type InsightsMetrics struct {
	TotalRequests int64   `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	Period        string  `json:"period"`
}

// ============================================================
// Health
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual upstream service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// ============================================================
// Generic API response wrappers
// ============================================================

// ListResponse wraps paginated list results.
type ListResponse[T any] struct {
	Data     []T  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// SuccessResponse wraps a successful mutation acknowledgement.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
