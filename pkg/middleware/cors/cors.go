// Package cors handles cross-origin resource sharing headers.
package cors

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/trailhead/trailhead/pkg/server/router"
)

// Config configures CORS behavior.
type Config struct {
	// AllowedOrigins lists origins allowed to call the API. "*" allows any.
	AllowedOrigins []string
	// AllowedMethods defaults to the standard CRUD verbs.
	AllowedMethods []string
	// AllowedHeaders defaults to Authorization, Content-Type, and the
	// request ID and concurrency headers.
	AllowedHeaders []string
	// AllowCredentials permits cookies and Authorization on cross-origin
	// requests. Ignored when any origin is allowed.
	AllowCredentials bool
	// MaxAge is how long browsers may cache the preflight result, in
	// seconds. Zero omits the header.
	MaxAge int
}

// DefaultConfig returns a permissive configuration suitable for
// development.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "If-Match", "X-Request-ID"},
		MaxAge:         600,
	}
}

// CORS creates middleware that answers preflight requests and sets the
// response headers for allowed origins.
func CORS(cfg Config) router.MiddlewareFunc {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = DefaultConfig().AllowedMethods
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = DefaultConfig().AllowedHeaders
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			origin := c.Request().Header.Get("Origin")
			if origin == "" {
				return next(c)
			}

			allowed, wildcard := originAllowed(cfg.AllowedOrigins, origin)
			if !allowed {
				return next(c)
			}

			h := c.Response().Header()
			if wildcard && !cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if cfg.AllowCredentials && !wildcard {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if c.Request().Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				return c.String(http.StatusNoContent, "")
			}

			return next(c)
		}
	}
}

func originAllowed(allowed []string, origin string) (ok bool, wildcard bool) {
	for _, candidate := range allowed {
		if candidate == "*" {
			return true, true
		}
		if strings.EqualFold(candidate, origin) {
			return true, false
		}
	}
	return false, false
}
