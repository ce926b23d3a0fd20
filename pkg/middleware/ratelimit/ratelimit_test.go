package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trailhead/trailhead/pkg/middleware/ratelimit"
	"github.com/trailhead/trailhead/pkg/server/router"
	ginadapter "github.com/trailhead/trailhead/pkg/server/router/gin"
)

func TestTokenBucketLimiterExhaustsBurst(t *testing.T) {
	limiter := ratelimit.NewTokenBucketLimiter(1, 2)

	if !limiter.Allow("k") || !limiter.Allow("k") {
		t.Fatal("burst of 2 must admit two requests")
	}
	if limiter.Allow("k") {
		t.Fatal("third immediate request must be rejected")
	}
}

func TestTokenBucketLimiterKeysAreIndependent(t *testing.T) {
	limiter := ratelimit.NewTokenBucketLimiter(1, 1)

	if !limiter.Allow("a") {
		t.Fatal("first request for a rejected")
	}
	if limiter.Allow("a") {
		t.Fatal("second request for a admitted")
	}
	if !limiter.Allow("b") {
		t.Fatal("b must have its own bucket")
	}
}

func limitedRouter(limiter ratelimit.RateLimiter, keyFunc func(router.Context) string) router.Router {
	r := ginadapter.NewRouter()
	r.Use(ratelimit.RateLimit(limiter, ratelimit.Config{KeyFunc: keyFunc}))
	r.GET("/ping", func(c router.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRateLimitRejectsWith429(t *testing.T) {
	limiter := ratelimit.NewTokenBucketLimiter(1, 1)
	r := limitedRouter(limiter, func(router.Context) string { return "fixed" })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q", got)
	}
}

func TestRateLimitSkipsEmptyKeys(t *testing.T) {
	limiter := ratelimit.NewTokenBucketLimiter(1, 1)
	r := limitedRouter(limiter, func(router.Context) string { return "" })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d = %d, anonymous keys must not be limited", i, w.Code)
		}
	}
}

func TestExtractIPFromRequest(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "x-forwarded-for wins and takes the first hop",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip second",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "remote addr with port stripped",
			remoteAddr: "192.0.2.4:5678",
			want:       "192.0.2.4",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := ratelimit.ExtractIPFromRequest(req); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
