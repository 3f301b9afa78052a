package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/infra/client"
	"github.com/fintrack/fintrack-bff-go/internal/infra/resilience"
)

func newFinanceClient(t *testing.T, handler http.HandlerFunc) *client.FinanceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return client.NewFinanceClient(
		&http.Client{Timeout: 2 * time.Second},
		srv.URL,
		resilience.NewCircuitBreaker("finance-test"),
		resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 4},
	)
}

func TestListTransactions_ForwardsBearerToken(t *testing.T) {
	c := newFinanceClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer upstream-tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		if r.URL.Path != "/api/transactions/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]domain.Transaction{
			{ID: 1, Amount: decimal.NewFromInt(100), Type: domain.TypeIncome},
		})
	})

	txns, err := c.ListTransactions(context.Background(), "upstream-tok", "42")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(txns) != 1 || txns[0].ID != 1 {
		t.Errorf("unexpected transactions %v", txns)
	}
}

func TestListBudgets_NotFoundMeansEmpty(t *testing.T) {
	c := newFinanceClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	budgets, err := c.ListBudgets(context.Background(), "tok", "42")
	if err != nil {
		t.Fatalf("expected no error for empty budget list, got %v", err)
	}
	if len(budgets) != 0 {
		t.Errorf("expected empty list, got %v", budgets)
	}
}

func TestGetBudget_NotFound(t *testing.T) {
	c := newFinanceClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetBudget(context.Background(), "tok", "42", 7)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	c := newFinanceClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"token":    "upstream-tok",
			"id":       "42",
			"username": "ada",
			"email":    "ada@example.com",
		})
	})

	result, err := c.Login(context.Background(), &domain.LoginRequest{Username: "ada", Password: "pw"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Token != "upstream-tok" || result.Username != "ada" {
		t.Errorf("unexpected login result %+v", result)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c := newFinanceClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Login(context.Background(), &domain.LoginRequest{Username: "ada", Password: "wrong"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSetSpentAmount(t *testing.T) {
	c := newFinanceClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/budgets/42/7/spent" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]decimal.Decimal
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(domain.Budget{ID: 7, SpentAmount: body["spentAmount"]})
	})

	saved, err := c.SetSpentAmount(context.Background(), "tok", "42", 7, decimal.NewFromInt(150))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !saved.SpentAmount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected spent 150, got %s", saved.SpentAmount)
	}
}

func TestCall_RetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]domain.Transaction{})
	}))
	defer srv.Close()

	c := client.NewFinanceClient(
		&http.Client{Timeout: 2 * time.Second},
		srv.URL,
		resilience.NewCircuitBreaker("finance-retry-test"),
		resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 1},
	)

	_, err := c.ListTransactions(context.Background(), "tok", "42")
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}
