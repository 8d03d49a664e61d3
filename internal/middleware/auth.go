package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/strucbot/strucbot/internal/auth"
	"github.com/strucbot/strucbot/internal/model"
	"github.com/strucbot/strucbot/internal/store"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.TokenService
	Users  store.UserStore
}

// Auth returns a middleware that authenticates API requests.
// It extracts the bearer token from the Authorization header, verifies
// it, re-resolves the user against the store, and injects the caller
// identity into the request context. A missing token is a 401;
// a bad token or a vanished user is a 403.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			// The token may outlive the account; trust the store,
			// not the claims.
			user, err := cfg.Users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "user_not_found"),
					slog.String("user_id", claims.Subject),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusForbidden, "User not found")
				return
			}

			identity := &model.Identity{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
				Role:     user.Role,
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// writeAuthError writes a JSON auth failure response.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
