package service

import (
	"context"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/infra/observability"
	"github.com/fintrack/fintrack-bff-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var insightsTracer = otel.Tracer("service/insights")

// InsightsService fronts the prediction service: expense forecasts,
// anomaly detection and the advisor chat.
type InsightsService struct {
	predictor port.Predictor
	chatter   port.Chatter
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewInsightsService creates a new insights service.
func NewInsightsService(predictor port.Predictor, chatter port.Chatter, metrics *observability.Metrics, logger *zap.Logger) *InsightsService {
	return &InsightsService{predictor: predictor, chatter: chatter, metrics: metrics, logger: logger}
}

// Forecast returns the predicted expenses for the next months.
func (s *InsightsService) Forecast(ctx context.Context, token, userID string) (*domain.ExpenseForecast, error) {
	ctx, span := insightsTracer.Start(ctx, "InsightsService.Forecast")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("expense_forecast", time.Since(start)) }()

	forecast, err := s.predictor.PredictExpense(ctx, token, userID)
	if err != nil {
		s.metrics.IncrExternalError("prediction-service")
		return nil, err
	}
	return forecast, nil
}

// Anomalies returns expenses flagged as unusual. A user with too little
// history gets an empty list, not an error.
func (s *InsightsService) Anomalies(ctx context.Context, token, userID string) ([]domain.Anomaly, error) {
	ctx, span := insightsTracer.Start(ctx, "InsightsService.Anomalies")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	anomalies, err := s.predictor.DetectAnomalies(ctx, token, userID)
	if err != nil {
		s.metrics.IncrExternalError("prediction-service")
		return nil, err
	}
	if anomalies == nil {
		anomalies = []domain.Anomaly{}
	}
	return anomalies, nil
}

// Chat forwards a message to the advisor and returns its reply. A
// conversation id is minted when the client does not supply one, so the
// frontend can thread follow-ups.
func (s *InsightsService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	ctx, span := insightsTracer.Start(ctx, "InsightsService.Chat")
	defer span.End()

	if req.Message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "required"}
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	reply, err := s.chatter.Chat(ctx, req.Message)
	if err != nil {
		s.metrics.IncrExternalError("prediction-service")
		return nil, err
	}

	s.logger.Debug("chat reply delivered", zap.String("conversation_id", conversationID))
	return &domain.ChatResponse{
		ConversationID: conversationID,
		Reply:          reply,
	}, nil
}

// Metrics returns the request/cache counters snapshot for the
// insights endpoint.
func (s *InsightsService) Metrics() *domain.InsightsMetrics {
	return s.metrics.GetInsightsSnapshot()
}
