package client

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/infra/resilience"
)

//go:embed schemas/expense_forecast.schema.json
var forecastSchemaJSON []byte

//go:embed schemas/anomalies.schema.json
var anomaliesSchemaJSON []byte

// PredictionClient calls the prediction/chat service (Python ML server).
// The service is an opaque collaborator, so its JSON responses are
// validated against a schema before anything downstream trusts them.
// It implements port.Predictor and port.Chatter.
type PredictionClient struct {
	httpClient     *http.Client
	baseURL        string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	forecastSchema *gojsonschema.Schema
	anomalySchema  *gojsonschema.Schema
}

// NewPredictionClient creates a new PredictionClient.
// Panics if the embedded schemas do not compile; that is a build defect,
// not a runtime condition.
func NewPredictionClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *PredictionClient {
	forecastSchema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(forecastSchemaJSON))
	if err != nil {
		panic("prediction: invalid forecast schema: " + err.Error())
	}
	anomalySchema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(anomaliesSchemaJSON))
	if err != nil {
		panic("prediction: invalid anomalies schema: " + err.Error())
	}
	return &PredictionClient{
		httpClient:     httpClient,
		baseURL:        baseURL,
		cb:             cb,
		cfg:            cfg,
		forecastSchema: forecastSchema,
		anomalySchema:  anomalySchema,
	}
}

// post executes one POST with circuit breaker and retry, returning the
// raw response body.
func (c *PredictionClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	result, err := c.cb.Execute(func() (any, error) {
		var respBody []byte
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("prediction service returned status %d", resp.StatusCode)
			}

			respBody, err = io.ReadAll(resp.Body)
			return err
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return respBody, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "prediction"}
		}
		return nil, &domain.ErrExternalService{Service: "prediction", Err: err}
	}
	return result.([]byte), nil
}

// validate checks raw against schema and surfaces the first violation.
func validate(schema *gojsonschema.Schema, raw []byte) error {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &domain.ErrMalformedResponse{Service: "prediction", Detail: err.Error()}
	}
	if !res.Valid() {
		return &domain.ErrMalformedResponse{Service: "prediction", Detail: res.Errors()[0].String()}
	}
	return nil
}

// PredictExpense asks the service for a 3-month expense forecast.
func (c *PredictionClient) PredictExpense(ctx context.Context, token, userID string) (*domain.ExpenseForecast, error) {
	ctx, span := tracer.Start(ctx, "PredictionClient.PredictExpense")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	raw, err := c.post(ctx, "/predict-expense", map[string]string{
		"userId": userID,
		"token":  token,
	})
	if err != nil {
		return nil, err
	}

	if err := validate(c.forecastSchema, raw); err != nil {
		return nil, err
	}

	var forecast domain.ExpenseForecast
	if err := json.Unmarshal(raw, &forecast); err != nil {
		return nil, &domain.ErrMalformedResponse{Service: "prediction", Detail: err.Error()}
	}
	return &forecast, nil
}

// DetectAnomalies asks the service for outlier expenses. The service
// answers with an error object instead of an array when it has fewer than
// five expenses to work with; that case maps to an empty result.
func (c *PredictionClient) DetectAnomalies(ctx context.Context, token, userID string) ([]domain.Anomaly, error) {
	ctx, span := tracer.Start(ctx, "PredictionClient.DetectAnomalies")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	raw, err := c.post(ctx, "/detect-anomalies", map[string]string{
		"userId": userID,
		"token":  token,
	})
	if err != nil {
		return nil, err
	}

	var insufficient struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &insufficient); err == nil && insufficient.Error != "" {
		return []domain.Anomaly{}, nil
	}

	if err := validate(c.anomalySchema, raw); err != nil {
		return nil, err
	}

	var anomalies []domain.Anomaly
	if err := json.Unmarshal(raw, &anomalies); err != nil {
		return nil, &domain.ErrMalformedResponse{Service: "prediction", Detail: err.Error()}
	}
	return anomalies, nil
}

// Chat sends a message to the advisor chatbot and returns its reply.
func (c *PredictionClient) Chat(ctx context.Context, message string) (string, error) {
	ctx, span := tracer.Start(ctx, "PredictionClient.Chat")
	defer span.End()

	raw, err := c.post(ctx, "/chat", map[string]string{"message": message})
	if err != nil {
		return "", err
	}

	var resp struct {
		Reply string `json:"reply"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &domain.ErrMalformedResponse{Service: "prediction", Detail: err.Error()}
	}
	if resp.Error != "" {
		return "", &domain.ErrExternalService{Service: "prediction", Err: errors.New(resp.Error)}
	}
	if resp.Reply == "" {
		return "", &domain.ErrMalformedResponse{Service: "prediction", Detail: "missing reply field"}
	}
	return resp.Reply, nil
}
