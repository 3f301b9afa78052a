package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// External services
	FinanceAPIURL    string
	PredictionAPIURL string

	// CORS
	AllowedOrigins []string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Sessions
	SessionDBPath string
	SessionTTL    time.Duration

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration
}

// LoadDotEnv loads a .env file for local development.
// Existing environment variables take precedence.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8085),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		FinanceAPIURL:    getEnv("FINANCE_API_URL", "http://localhost:8080"),
		PredictionAPIURL: getEnv("PREDICTION_API_URL", "http://localhost:5000"),

		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 1*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SessionDBPath: getEnv("SESSION_DB_PATH", "data/sessions.db"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),

		JWTSecret:    getEnv("JWT_SECRET", "fintrack-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 1*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
