// Package logging emits one structured log line per request.
package logging

import (
	"strings"
	"time"

	"github.com/trailhead/trailhead/pkg/middleware/requestid"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// Config configures request logging behavior.
type Config struct {
	// Enabled turns request logging off entirely when false.
	Enabled bool
	// LogStart additionally emits a line when the request arrives.
	LogStart bool
	// ExcludedPathPrefixes suppresses logging for matching paths, typically
	// health and metrics probes.
	ExcludedPathPrefixes []string
}

// DefaultConfig returns the standard request logging behavior.
func DefaultConfig() Config {
	return Config{Enabled: true}
}

// Logging creates middleware with default configuration.
func Logging(log logger.Logger) router.MiddlewareFunc {
	return WithConfig(log, DefaultConfig())
}

// WithConfig creates middleware that logs every request on completion with
// method, path, status, duration, and request ID. Handler errors are logged
// at error level and passed through unchanged.
func WithConfig(log logger.Logger, cfg Config) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			req := c.Request()
			if !cfg.Enabled || excluded(cfg.ExcludedPathPrefixes, req.URL.Path) {
				return next(c)
			}

			start := time.Now()
			requestID := requestid.GetRequestID(req.Context())

			if cfg.LogStart {
				log.Info("request started",
					"request_id", requestID,
					"method", req.Method,
					"path", req.URL.Path,
					"remote_addr", req.RemoteAddr,
				)
			}

			err := next(c)

			fields := []interface{}{
				"request_id", requestID,
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", req.RemoteAddr,
			}
			if err != nil {
				log.Error("request failed", append(fields, "error", err)...)
				return err
			}
			log.Info("request completed", fields...)
			return nil
		}
	}
}

func excluded(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
