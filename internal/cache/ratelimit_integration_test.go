//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/strucbot/strucbot/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func TestIntegrationRateLimit_BurstThenDeny(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	const (
		ratePerMinute = 10
		burst         = 3
	)

	// The full burst should pass.
	for i := 0; i < burst; i++ {
		result, err := c.CheckGenerateRateLimit(ctx, "user-burst", ratePerMinute, burst)
		if err != nil {
			t.Fatalf("CheckGenerateRateLimit failed: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// The next request exceeds the bucket.
	result, err := c.CheckGenerateRateLimit(ctx, "user-burst", ratePerMinute, burst)
	if err != nil {
		t.Fatalf("CheckGenerateRateLimit failed: %v", err)
	}
	if result.Allowed {
		t.Error("request beyond burst should be denied")
	}
	if result.RetryAfter <= 0 {
		t.Errorf("expected positive RetryAfter, got %v", result.RetryAfter)
	}
}

func TestIntegrationRateLimit_PerUserIsolation(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	// Drain one user's bucket.
	for i := 0; i < 5; i++ {
		if _, err := c.CheckGenerateRateLimit(ctx, "user-a", 10, 3); err != nil {
			t.Fatalf("CheckGenerateRateLimit failed: %v", err)
		}
	}

	// Another user still has a full bucket.
	result, err := c.CheckGenerateRateLimit(ctx, "user-b", 10, 3)
	if err != nil {
		t.Fatalf("CheckGenerateRateLimit failed: %v", err)
	}
	if !result.Allowed {
		t.Error("a fresh user should not be rate limited")
	}
}

func TestIntegrationRateLimit_ZeroRateIsUnlimited(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	for i := 0; i < 20; i++ {
		result, err := c.CheckGenerateRateLimit(ctx, "user-unlimited", 0, 3)
		if err != nil {
			t.Fatalf("CheckGenerateRateLimit failed: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed with rate 0", i+1)
		}
	}
}
