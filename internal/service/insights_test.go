package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/infra/observability"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

func newInsightsService(predictor *mockPredictor, chatter *mockChatter) *service.InsightsService {
	return service.NewInsightsService(predictor, chatter, observability.NewMetrics(), zap.NewNop())
}

func TestForecast_Success(t *testing.T) {
	predictor := &mockPredictor{
		forecast: &domain.ExpenseForecast{
			PredictedNextMonths: []domain.MonthAmount{
				{Month: "2024-03", Amount: dec("120.50")},
				{Month: "2024-04", Amount: dec("110.00")},
			},
			TotalPreviousMonths: dec("380.25"),
		},
	}
	svc := newInsightsService(predictor, &mockChatter{})

	forecast, err := svc.Forecast(context.Background(), "tok", "7")
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(forecast.PredictedNextMonths) != 2 {
		t.Errorf("expected 2 predicted months, got %d", len(forecast.PredictedNextMonths))
	}
}

func TestForecast_UpstreamError(t *testing.T) {
	predictor := &mockPredictor{err: &domain.ErrExternalService{Service: "prediction-service", Err: errors.New("503")}}
	svc := newInsightsService(predictor, &mockChatter{})

	_, err := svc.Forecast(context.Background(), "tok", "7")
	var external *domain.ErrExternalService
	if !errors.As(err, &external) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestAnomalies_NilBecomesEmpty(t *testing.T) {
	svc := newInsightsService(&mockPredictor{anomalies: nil}, &mockChatter{})

	anomalies, err := svc.Anomalies(context.Background(), "tok", "7")
	if err != nil {
		t.Fatalf("anomalies: %v", err)
	}
	if anomalies == nil {
		t.Error("expected empty slice, not nil")
	}
}

func TestAnomalies_Success(t *testing.T) {
	predictor := &mockPredictor{
		anomalies: []domain.Anomaly{
			{ID: 9, Amount: dec("900"), Category: "GROCERIES", Overspent: dec("650")},
		},
	}
	svc := newInsightsService(predictor, &mockChatter{})

	anomalies, err := svc.Anomalies(context.Background(), "tok", "7")
	if err != nil {
		t.Fatalf("anomalies: %v", err)
	}
	if len(anomalies) != 1 || anomalies[0].ID != 9 {
		t.Errorf("unexpected anomalies: %+v", anomalies)
	}
}

func TestChat_MintsConversationID(t *testing.T) {
	svc := newInsightsService(&mockPredictor{}, &mockChatter{reply: "Spend less on coffee."})

	resp, err := svc.Chat(context.Background(), &domain.ChatRequest{Message: "How am I doing?"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Reply != "Spend less on coffee." {
		t.Errorf("unexpected reply: %s", resp.Reply)
	}
	if resp.ConversationID == "" {
		t.Error("expected a minted conversation id")
	}
}

func TestChat_KeepsConversationID(t *testing.T) {
	svc := newInsightsService(&mockPredictor{}, &mockChatter{reply: "ok"})

	resp, err := svc.Chat(context.Background(), &domain.ChatRequest{Message: "hi", ConversationID: "conv-1"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.ConversationID != "conv-1" {
		t.Errorf("expected conversation id preserved, got %s", resp.ConversationID)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	svc := newInsightsService(&mockPredictor{}, &mockChatter{})

	_, err := svc.Chat(context.Background(), &domain.ChatRequest{})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInsightsMetrics_Snapshot(t *testing.T) {
	metrics := observability.NewMetrics()
	svc := service.NewInsightsService(&mockPredictor{}, &mockChatter{}, metrics, zap.NewNop())

	metrics.IncrRequest("success")
	metrics.IncrRequest("success")
	metrics.IncrRequest("error")
	metrics.IncrCacheHit("dashboard")
	metrics.IncrCacheMiss("dashboard")

	snap := svc.Metrics()
	if snap.TotalRequests != 3 {
		t.Errorf("expected 3 total requests, got %d", snap.TotalRequests)
	}
	if snap.ErrorRate < 0.33 || snap.ErrorRate > 0.34 {
		t.Errorf("expected error rate ~0.33, got %f", snap.ErrorRate)
	}
	if snap.CacheHitRate != 0.5 {
		t.Errorf("expected cache hit rate 0.5, got %f", snap.CacheHitRate)
	}
}
