package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/expensio/expensio/internal/auth"
	"github.com/expensio/expensio/internal/model"
	"github.com/expensio/expensio/internal/repository"
	"github.com/expensio/expensio/internal/token"
)

// UserStore resolves a token's user id to a stored user.
// *repository.Repository satisfies it.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// TokenVerifier validates a bearer token into claims.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens TokenVerifier
	Users  UserStore
}

// Auth returns a middleware that authenticates requests.
// It extracts the bearer token from the Authorization header, verifies
// it, confirms the user still exists, and attaches the resolved identity
// to the request context. Every failure surfaces as the same 401; the
// precise reason is only logged.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearerToken(r)
			if tok == "" {
				logAuthFailure(cfg.Logger, r, "no_token")
				writeAuthError(w)
				return
			}

			claims, err := cfg.Tokens.Verify(tok)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, token.ErrExpired) {
					reason = "token_expired"
				}
				logAuthFailure(cfg.Logger, r, reason)
				writeAuthError(w)
				return
			}

			user, err := cfg.Users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					logAuthFailure(cfg.Logger, r, "user_not_found")
				} else {
					cfg.Logger.Error("database error during auth",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				writeAuthError(w)
				return
			}

			identity := &auth.Identity{
				UserID:   user.ID,
				Username: user.Username,
			}

			cfg.Logger.Info("authentication successful",
				slog.String("user_id", identity.UserID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures so callers cannot tell a
// missing token from an expired one or from a deleted user.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing token"}}`))
}
