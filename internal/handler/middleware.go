package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/fintrack/fintrack-bff-go/internal/domain"
	"github.com/fintrack/fintrack-bff-go/internal/port"
	"github.com/fintrack/fintrack-bff-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// JWTAuthMiddleware validates Bearer tokens, loads the matching session
// and injects it into the request context. The session carries the
// upstream bearer token the handlers forward to the finance API.
func JWTAuthMiddleware(authSvc *service.AuthService, sessions port.SessionStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing authentication token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			sess, err := sessions.Load(r.Context(), claims.SID)
			if err != nil {
				logger.Error("auth: session lookup failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if sess == nil {
				// Valid JWT but the session is gone: logged out elsewhere
				// or expired server-side.
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the authenticated session from context.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}
