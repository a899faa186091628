package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// LoginLimiter decides whether another login attempt from a client is
// allowed. *cache.Cache satisfies it.
type LoginLimiter interface {
	AllowLogin(ctx context.Context, clientIP string) (bool, time.Duration, error)
}

// RateLimitConfig holds configuration for the login rate limiter.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter LoginLimiter
	Enabled bool
}

// RateLimitLogin returns a middleware that throttles login attempts per
// client IP to slow down credential stuffing. On limiter errors the
// request is allowed through; availability wins over strictness here.
func RateLimitLogin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, retryAfter, err := cfg.Limiter.AllowLogin(r.Context(), ip)
			if err != nil {
				cfg.Logger.Error("login rate limiter error",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				cfg.Logger.Warn("login rate limited",
					slog.String("ip", r.RemoteAddr),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"Too many login attempts"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
