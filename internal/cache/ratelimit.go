package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// loginAttemptPrefix is the Redis key prefix for login attempt counters.
const loginAttemptPrefix = "ratelimit:login:"

// fixedWindowScript counts attempts in a fixed window atomically.
// Returns {count, ttl} so the caller can compute Retry-After.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('EXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('TTL', KEYS[1])
	return {count, ttl}
`)

// LoginRateLimiter throttles login attempts per client, counting them
// in a fixed Redis window.
type LoginRateLimiter struct {
	cache    *Cache
	attempts int
	window   time.Duration
}

// NewLoginRateLimiter creates a limiter allowing attempts per window.
func NewLoginRateLimiter(cache *Cache, attempts int, window time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		cache:    cache,
		attempts: attempts,
		window:   window,
	}
}

// AllowLogin records an attempt from the client and reports whether it
// is within the limit, with the time until the window resets.
// The client address is hashed so raw IPs are never stored.
func (l *LoginRateLimiter) AllowLogin(ctx context.Context, clientIP string) (bool, time.Duration, error) {
	key := loginAttemptPrefix + hashClient(clientIP)

	result, err := fixedWindowScript.Run(ctx, l.cache.client,
		[]string{key},
		int(l.window.Seconds()),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check login rate limit: %w", err)
	}

	count := result[0]
	retryAfter := time.Duration(result[1]) * time.Second

	return count <= int64(l.attempts), retryAfter, nil
}

// hashClient creates a truncated SHA256 hash of a client address.
func hashClient(addr string) string {
	hash := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
