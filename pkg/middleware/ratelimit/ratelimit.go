// Package ratelimit rejects requests that exceed a per-key rate.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/trailhead/trailhead/pkg/auth"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// RateLimiter decides whether a request identified by key may proceed.
// Implementations must be safe for concurrent use.
type RateLimiter interface {
	Allow(key string) bool
}

// TokenBucketLimiter keeps an independent token bucket per key, allowing
// bursts up to the burst size while holding the average to the configured
// rate.
type TokenBucketLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

// NewTokenBucketLimiter creates an in-process token bucket limiter.
func NewTokenBucketLimiter(requestsPerSecond int, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		rate:  rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// Allow reports whether a request for key is within its rate limit.
func (l *TokenBucketLimiter) Allow(key string) bool {
	return l.getLimiter(key).Allow()
}

func (l *TokenBucketLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	return limiter.(*rate.Limiter)
}

// Config configures the rate limiting middleware.
type Config struct {
	// KeyFunc extracts the rate limiting key from the request, e.g. the
	// client IP or the authenticated user ID.
	KeyFunc func(router.Context) string
}

// RateLimit creates middleware that rejects requests over the limit with
// 429 and a Retry-After header. Requests whose key resolves empty are not
// limited.
func RateLimit(limiter RateLimiter, cfg Config) router.MiddlewareFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c router.Context) string {
			return ExtractIPFromRequest(c.Request())
		}
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			key := keyFunc(c)
			if key != "" && !limiter.Allow(key) {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "rate_limited",
					"message": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}

// ExtractIPFromRequest returns the client IP, honoring X-Forwarded-For and
// X-Real-IP set by proxies before falling back to RemoteAddr.
func ExtractIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

// ExtractUserIDFromContext returns the authenticated subject for per-user
// limiting, or "" for anonymous requests.
func ExtractUserIDFromContext(c router.Context) string {
	claims := auth.GetClaims(c.Request().Context())
	if claims == nil {
		return ""
	}
	return claims.Subject
}
