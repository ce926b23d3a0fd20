// Package metrics records Prometheus metrics for every request.
package metrics

import (
	"strings"
	"time"

	"github.com/trailhead/trailhead/pkg/observability/metrics"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// Config configures the HTTP metrics middleware.
type Config struct {
	// ExcludedPathPrefixes skips recording for matching paths so the
	// metrics endpoint does not measure itself.
	ExcludedPathPrefixes []string
}

// Metrics creates middleware that tracks request duration, count, and
// in-flight gauge for each method, path, and status combination.
func Metrics(cfg Config) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range cfg.ExcludedPathPrefixes {
				if prefix != "" && strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			metrics.IncrementInFlight()
			defer metrics.DecrementInFlight()

			start := time.Now()
			err := next(c)

			status := c.Response().Status()
			if err != nil && !c.Response().Written() {
				status = 500
			}
			metrics.RecordHTTPMetrics(c.Request().Method, path, status, time.Since(start))

			return err
		}
	}
}
