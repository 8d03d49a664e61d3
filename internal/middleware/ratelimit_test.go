package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strucbot/strucbot/internal/auth"
	"github.com/strucbot/strucbot/internal/cache"
	"github.com/strucbot/strucbot/internal/model"
)

// unreachableCache wraps a Redis client pointing at a dead port, so
// every rate limit check fails with a connection error.
func unreachableCache(t *testing.T) *cache.Cache {
	t.Helper()

	c := cache.NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	t.Cleanup(func() { c.Close() })
	return c
}

func rateLimitRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-schema", nil)
	identity := &model.Identity{UserID: "user-1", Username: "alice"}
	return req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
}

func TestRateLimitGenerate_FailsOpenOnCacheError(t *testing.T) {
	cfg := RateLimitConfig{
		Logger:        testLogger(),
		Cache:         unreachableCache(t),
		Enabled:       true,
		RatePerMinute: 10,
		Burst:         3,
	}

	called := false
	handler := RateLimitGenerate(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, rateLimitRequest())

	if !called {
		t.Fatal("request must pass through when the limiter backend is down")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimitGenerate_DisabledPassesThrough(t *testing.T) {
	cfg := RateLimitConfig{
		Logger:  testLogger(),
		Enabled: false,
	}

	called := false
	handler := RateLimitGenerate(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), rateLimitRequest())

	if !called {
		t.Fatal("disabled limiter must not block the request")
	}
}

func TestRateLimitGenerate_NoIdentityPassesThrough(t *testing.T) {
	cfg := RateLimitConfig{
		Logger:        testLogger(),
		Cache:         unreachableCache(t),
		Enabled:       true,
		RatePerMinute: 10,
		Burst:         3,
	}

	called := false
	handler := RateLimitGenerate(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/generate-schema", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("request without identity must pass through")
	}
}
