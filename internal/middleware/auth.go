package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"reachmesh-bknd/internal/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenVersionChecker confirms a token has not been revoked by a version bump.
type TokenVersionChecker interface {
	CheckTokenVersion(ctx context.Context, userID string, tokenVersion int) (bool, error)
}

type AuthMiddleware struct {
	jwt     *auth.JWTManager
	checker TokenVersionChecker
	logr    *zap.Logger
}

type contextKey string

const (
	ContextUserIDKey  contextKey = "userID"
	ContextAuthMethod contextKey = "authMethod"
)

// NewAuthMiddleware creates a reusable JWT auth middleware instance
func NewAuthMiddleware(jwt *auth.JWTManager, checker TokenVersionChecker, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:     jwt,
		checker: checker,
		logr:    logr,
	}
}

// JWTAuth rejects requests without a valid access token.
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, status, msg := m.authenticate(r)
		if status != 0 {
			m.reject(w, status, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the viewer when a valid token is present and lets
// anonymous requests through. An invalid token is still rejected.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, status, msg := m.authenticate(r)
		if status != 0 {
			m.reject(w, status, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject writes the same envelope the handlers use for errors.
func (m *AuthMiddleware) reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": false, "message": msg}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		m.logr.Warn("failed to write auth error", zap.Error(err))
	}
}

func (m *AuthMiddleware) authenticate(r *http.Request) (context.Context, int, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, http.StatusUnauthorized, "missing authorization header"
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, http.StatusUnauthorized, "invalid token format"
	}

	claims, err := m.jwt.VerifyToken(tokenString)
	if err != nil {
		m.logr.Warn("token parse error", zap.Error(err))
		return nil, http.StatusUnauthorized, "invalid or expired token"
	}
	if claims.Kind != auth.AccessToken {
		return nil, http.StatusUnauthorized, "not an access token"
	}

	valid, err := m.checker.CheckTokenVersion(r.Context(), claims.UserID, claims.TokenVersion)
	if err != nil {
		m.logr.Error("failed checking token version", zap.Error(err), zap.String("user_id", claims.UserID))
		return nil, http.StatusInternalServerError, "internal server error"
	}
	if !valid {
		m.logr.Warn("token version invalid", zap.String("user_id", claims.UserID))
		return nil, http.StatusUnauthorized, "token revoked or invalid"
	}

	ctx := context.WithValue(r.Context(), ContextUserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, ContextAuthMethod, claims.AuthMethod)
	return ctx, 0, ""
}

// UserID returns the authenticated viewer, if any.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	s, ok := ctx.Value(ContextUserIDKey).(string)
	if !ok || s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithUserID is used by tests and internal callers to act as a user.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, id.String())
}
