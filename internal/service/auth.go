// Package service provides the business logic layer (use cases).
// AuthService handles login against the finance API, session lifecycle
// and JWT token management.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// AuthService orchestrates authentication flows. Credential checks are
// delegated to the finance API; the BFF only owns the session and the
// access token it hands to the browser.
type AuthService struct {
	upstream   port.Authenticator
	sessions   port.SessionStore
	jwtSecret  []byte
	accessTTL  time.Duration
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(upstream port.Authenticator, sessions port.SessionStore, jwtSecret string, accessTTL, sessionTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		upstream:   upstream,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("username", req.Username))

	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "required"}
	}

	// The finance API is the system of record for credentials.
	result, err := s.upstream.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &domain.Session{
		ID:            uuid.New().String(),
		UserID:        result.ID,
		Username:      result.Username,
		Email:         result.Email,
		UpstreamToken: result.Token,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	accessToken, err := s.signAccessToken(result.ID, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", result.ID),
		zap.String("session_id", sess.ID),
	)

	return &domain.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		User: domain.User{
			ID:       result.ID,
			Username: result.Username,
			Email:    result.Email,
		},
	}, nil
}

// ============================================================
// Signup — POST /v1/auth/signup
// ============================================================

// Signup registers the user upstream and logs them straight in, so the
// browser lands on the dashboard with a valid token after registration.
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	if req.Username == "" {
		return nil, &domain.ErrValidation{Field: "username", Message: "required"}
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, &domain.ErrValidation{Field: "email", Message: "must be a valid email address"}
	}
	if len(req.Password) < 6 {
		return nil, &domain.ErrValidation{Field: "password", Message: "must be at least 6 characters"}
	}

	if err := s.upstream.Signup(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("username", req.Username))

	return s.Login(ctx, &domain.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
}

// ============================================================
// Logout — POST /v1/auth/logout
// ============================================================

// Logout destroys every session belonging to the user.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	s.logger.Info("user logged out", zap.String("user_id", userID))
	return nil
}

// ============================================================
// ValidateToken — used by middleware
// ============================================================

// JWTClaims represents the custom claims in access tokens. SID ties the
// token back to the persisted session holding the upstream bearer token.
type JWTClaims struct {
	Sub  string `json:"sub"`
	SID  string `json:"sid"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

// ============================================================
// Internal JWT helpers
// ============================================================

func (s *AuthService) signAccessToken(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:  userID,
		SID:  sessionID,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "fintrack-bff",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
