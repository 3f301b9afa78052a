// Package client implements HTTP clients for the two external services:
// the finance REST API (system of record) and the prediction/chat service.
// All calls go through a circuit breaker and retry with backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/infra/resilience"
)

var tracer = otel.Tracer("client")

// FinanceClient talks to the finance REST API. It implements
// port.FinanceStore and port.Authenticator.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
}

// NewFinanceClient creates a new FinanceClient.
func NewFinanceClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *FinanceClient {
	maxConc := cfg.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 1
	}
	return &FinanceClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(maxConc),
	}
}

// call executes one authenticated JSON request with bulkhead, circuit
// breaker and retry. out may be nil for calls whose body is discarded.
func (c *FinanceClient) call(ctx context.Context, method, path, token string, body, out any) error {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var reader *bytes.Reader
			if body != nil {
				raw, err := json.Marshal(body)
				if err != nil {
					return err
				}
				reader = bytes.NewReader(raw)
			} else {
				reader = bytes.NewReader(nil)
			}

			req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return &domain.ErrNotFound{Resource: "finance-api resource", ID: path}
			case resp.StatusCode == http.StatusUnauthorized:
				return &domain.ErrUnauthorized{Message: "finance API rejected credentials"}
			case resp.StatusCode == http.StatusConflict:
				return &domain.ErrConflict{Message: "resource already exists"}
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return fmt.Errorf("finance API returned status %d", resp.StatusCode)
			}

			if out == nil {
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return nil, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &domain.ErrCircuitOpen{Service: "finance-api"}
		}
		return &domain.ErrExternalService{Service: "finance-api", Err: err}
	}
	return nil
}

// --- Dashboard ---

// GetDashboard fetches the server-computed dashboard snapshot.
func (c *FinanceClient) GetDashboard(ctx context.Context, token, userID string) (*domain.DashboardSummary, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.GetDashboard")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var summary domain.DashboardSummary
	if err := c.call(ctx, http.MethodGet, "/api/dashboard/"+userID, token, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// --- Transactions ---

func (c *FinanceClient) ListTransactions(ctx context.Context, token, userID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var txns []domain.Transaction
	if err := c.call(ctx, http.MethodGet, "/api/transactions/"+userID, token, nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

func (c *FinanceClient) AddTransaction(ctx context.Context, token string, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.AddTransaction")
	defer span.End()

	var saved domain.Transaction
	if err := c.call(ctx, http.MethodPost, "/api/transactions/add", token, tx, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *FinanceClient) UpdateTransactionStatus(ctx context.Context, token string, transactionID int64, status string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.UpdateTransactionStatus")
	defer span.End()
	span.SetAttributes(attribute.Int64("transaction.id", transactionID))

	body := map[string]string{"status": status}
	var updated domain.Transaction
	path := fmt.Sprintf("/api/transactions/changeStatus/%d", transactionID)
	if err := c.call(ctx, http.MethodPatch, path, token, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *FinanceClient) DeleteTransaction(ctx context.Context, token string, transactionID int64) error {
	ctx, span := tracer.Start(ctx, "FinanceClient.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.Int64("transaction.id", transactionID))

	path := fmt.Sprintf("/api/transactions/delete/%d", transactionID)
	return c.call(ctx, http.MethodDelete, path, token, nil, nil)
}

// --- Budgets ---

func (c *FinanceClient) ListBudgets(ctx context.Context, token, userID string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.ListBudgets")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var budgets []domain.Budget
	if err := c.call(ctx, http.MethodGet, "/api/budgets/"+userID, token, nil, &budgets); err != nil {
		// The finance API answers 404 for "no budgets yet"; treat as empty.
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return []domain.Budget{}, nil
		}
		return nil, err
	}
	return budgets, nil
}

func (c *FinanceClient) GetBudget(ctx context.Context, token, userID string, budgetID int64) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.GetBudget")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", budgetID))

	var budget domain.Budget
	path := fmt.Sprintf("/api/budgets/%s/%d", userID, budgetID)
	if err := c.call(ctx, http.MethodGet, path, token, nil, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

func (c *FinanceClient) CreateBudget(ctx context.Context, token, userID string, b *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.CreateBudget")
	defer span.End()

	var saved domain.Budget
	if err := c.call(ctx, http.MethodPost, "/api/budgets/"+userID, token, b, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *FinanceClient) UpdateBudget(ctx context.Context, token, userID string, budgetID int64, b *domain.Budget) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.UpdateBudget")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", budgetID))

	var saved domain.Budget
	path := fmt.Sprintf("/api/budgets/%s/%d", userID, budgetID)
	if err := c.call(ctx, http.MethodPut, path, token, b, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *FinanceClient) DeleteBudget(ctx context.Context, token, userID string, budgetID int64) error {
	ctx, span := tracer.Start(ctx, "FinanceClient.DeleteBudget")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", budgetID))

	path := fmt.Sprintf("/api/budgets/%s/%d", userID, budgetID)
	return c.call(ctx, http.MethodDelete, path, token, nil, nil)
}

func (c *FinanceClient) SetSpentAmount(ctx context.Context, token, userID string, budgetID int64, spent decimal.Decimal) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.SetSpentAmount")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", budgetID))

	body := map[string]decimal.Decimal{"spentAmount": spent}
	var saved domain.Budget
	path := fmt.Sprintf("/api/budgets/%s/%d/spent", userID, budgetID)
	if err := c.call(ctx, http.MethodPatch, path, token, body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *FinanceClient) AddSpentAmount(ctx context.Context, token, userID string, budgetID int64, amount decimal.Decimal) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.AddSpentAmount")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", budgetID))

	body := map[string]decimal.Decimal{"amount": amount}
	var saved domain.Budget
	path := fmt.Sprintf("/api/budgets/%s/%d/spent/add", userID, budgetID)
	if err := c.call(ctx, http.MethodPatch, path, token, body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *FinanceClient) ResetBudget(ctx context.Context, token, userID string, budgetID int64) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.ResetBudget")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", budgetID))

	var saved domain.Budget
	path := fmt.Sprintf("/api/budgets/%s/%d/reset", userID, budgetID)
	if err := c.call(ctx, http.MethodPost, path, token, nil, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// --- Goals ---

func (c *FinanceClient) ListGoals(ctx context.Context, token, userID string) ([]domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.ListGoals")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var goals []domain.SavingsGoal
	if err := c.call(ctx, http.MethodGet, "/api/goals/"+userID, token, nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

func (c *FinanceClient) CreateGoal(ctx context.Context, token, userID string, g *domain.SavingsGoal) (*domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.CreateGoal")
	defer span.End()

	var saved domain.SavingsGoal
	if err := c.call(ctx, http.MethodPost, "/api/goals/"+userID, token, g, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *FinanceClient) AddSavedAmount(ctx context.Context, token string, goalID int64, amount decimal.Decimal) (*domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.AddSavedAmount")
	defer span.End()
	span.SetAttributes(attribute.Int64("goal.id", goalID))

	body := map[string]decimal.Decimal{"amount": amount}
	var saved domain.SavingsGoal
	path := fmt.Sprintf("/api/goals/%d/add-saved-amount", goalID)
	if err := c.call(ctx, http.MethodPut, path, token, body, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *FinanceClient) DeleteGoal(ctx context.Context, token string, goalID int64) error {
	ctx, span := tracer.Start(ctx, "FinanceClient.DeleteGoal")
	defer span.End()
	span.SetAttributes(attribute.Int64("goal.id", goalID))

	path := fmt.Sprintf("/api/goals/%d", goalID)
	return c.call(ctx, http.MethodDelete, path, token, nil, nil)
}

// --- Auth ---

// Login checks credentials against the finance API and returns the
// upstream bearer token plus the user identity.
func (c *FinanceClient) Login(ctx context.Context, req *domain.LoginRequest) (*domain.UpstreamLoginResult, error) {
	ctx, span := tracer.Start(ctx, "FinanceClient.Login")
	defer span.End()

	var result domain.UpstreamLoginResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup registers a new user with the finance API.
func (c *FinanceClient) Signup(ctx context.Context, req *domain.SignupRequest) error {
	ctx, span := tracer.Start(ctx, "FinanceClient.Signup")
	defer span.End()

	return c.call(ctx, http.MethodPost, "/api/auth/signup", "", req, nil)
}
