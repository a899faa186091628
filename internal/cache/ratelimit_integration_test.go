//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/expensio/expensio/internal/testutil"
)

func TestIntegrationLoginRateLimiter_AllowsWithinLimit(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	limiter := NewLoginRateLimiter(c, 3, time.Minute)
	clientIP := uniqueIP()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.AllowLogin(ctx, clientIP)
		if err != nil {
			t.Fatalf("AllowLogin failed: %v", err)
		}
		if !allowed {
			t.Fatalf("Attempt %d should be allowed", i+1)
		}
	}
}

func TestIntegrationLoginRateLimiter_DeniesOverLimit(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	limiter := NewLoginRateLimiter(c, 2, time.Minute)
	clientIP := uniqueIP()

	for i := 0; i < 2; i++ {
		if allowed, _, _ := limiter.AllowLogin(ctx, clientIP); !allowed {
			t.Fatalf("Attempt %d should be allowed", i+1)
		}
	}

	allowed, retryAfter, err := limiter.AllowLogin(ctx, clientIP)
	if err != nil {
		t.Fatalf("AllowLogin failed: %v", err)
	}
	if allowed {
		t.Error("Attempt over the limit should be denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("Unexpected retryAfter: %s", retryAfter)
	}
}

func TestIntegrationLoginRateLimiter_ClientsAreIndependent(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	limiter := NewLoginRateLimiter(c, 1, time.Minute)
	first := uniqueIP()
	second := uniqueIP()

	if allowed, _, _ := limiter.AllowLogin(ctx, first); !allowed {
		t.Fatal("First client should be allowed")
	}
	if allowed, _, _ := limiter.AllowLogin(ctx, first); allowed {
		t.Fatal("First client should now be denied")
	}

	allowed, _, err := limiter.AllowLogin(ctx, second)
	if err != nil {
		t.Fatalf("AllowLogin failed: %v", err)
	}
	if !allowed {
		t.Error("Second client should be unaffected by the first")
	}
}

func TestIntegrationLoginRateLimiter_WindowExpires(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	limiter := NewLoginRateLimiter(c, 1, 1*time.Second)
	clientIP := uniqueIP()

	if allowed, _, _ := limiter.AllowLogin(ctx, clientIP); !allowed {
		t.Fatal("First attempt should be allowed")
	}
	if allowed, _, _ := limiter.AllowLogin(ctx, clientIP); allowed {
		t.Fatal("Second attempt should be denied")
	}

	time.Sleep(1100 * time.Millisecond)

	allowed, _, err := limiter.AllowLogin(ctx, clientIP)
	if err != nil {
		t.Fatalf("AllowLogin failed: %v", err)
	}
	if !allowed {
		t.Error("Attempt after window expiry should be allowed")
	}
}

var ipCounter int

func uniqueIP() string {
	ipCounter++
	return fmt.Sprintf("10.0.%d.%d", ipCounter/256, ipCounter%256)
}

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
