package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/strucbot/strucbot/internal/auth"
	"github.com/strucbot/strucbot/internal/cache"
)

// RateLimitConfig holds configuration for the generation rate limit.
type RateLimitConfig struct {
	Logger *slog.Logger
	Cache  *cache.Cache
	// Enabled turns the limiter on; requires Cache to be set.
	Enabled       bool
	RatePerMinute int
	Burst         int
}

// RateLimitGenerate returns middleware that rate limits schema
// generation per user. Must be applied after Auth middleware.
func RateLimitGenerate(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Cache == nil {
				next.ServeHTTP(w, r)
				return
			}

			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				// Auth middleware did not run; nothing to key on.
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Cache.CheckGenerateRateLimit(
				r.Context(),
				identity.UserID,
				cfg.RatePerMinute,
				cfg.Burst,
			)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("user_id", identity.UserID),
				)
				// Fail open
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

			if !result.Allowed {
				cfg.Logger.Warn("generation rate limit exceeded",
					slog.String("user_id", identity.UserID),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many generation requests, slow down"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
