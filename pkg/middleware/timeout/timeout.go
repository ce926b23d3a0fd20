// Package timeout bounds handler execution time per request.
package timeout

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/trailhead/trailhead/pkg/server/router"
)

// Config configures the request timeout middleware.
type Config struct {
	// Enabled turns timeouts off entirely when false.
	Enabled bool
	// Default is the deadline applied to each request. Zero falls back to
	// 15 seconds.
	Default time.Duration
	// ExcludedPathPrefixes disables the deadline for matching paths,
	// typically streaming or long-poll endpoints.
	ExcludedPathPrefixes []string
}

// DefaultConfig returns the standard timeout behavior.
func DefaultConfig() Config {
	return Config{Enabled: true, Default: 15 * time.Second}
}

// Timeout creates middleware that attaches a deadline to the request
// context. When the handler exceeds it, the client receives a 504 if
// nothing was written yet.
func Timeout(cfg Config) router.MiddlewareFunc {
	timeout := cfg.Default
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			req := c.Request()
			if !cfg.Enabled || excluded(cfg.ExcludedPathPrefixes, req.URL.Path) {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(req.Context(), timeout)
			defer cancel()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			if deadlineExceeded(ctx, err) && !c.Response().Written() {
				return c.JSON(http.StatusGatewayTimeout, map[string]interface{}{
					"error":   "timeout",
					"message": "request timed out",
				})
			}
			return err
		}
	}
}

func deadlineExceeded(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func excluded(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
