// Package auth authenticates requests carrying bearer tokens.
package auth

import (
	"strings"

	"github.com/trailhead/trailhead/pkg/auth"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// Bearer creates middleware that validates the Authorization header when
// present and stores the resulting claims in the request context. Requests
// without a token pass through unauthenticated; handlers that require an
// identity reject those themselves. A token that is present but invalid is
// treated as absent and logged.
func Bearer(tokens *auth.TokenService, log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			token := extractBearer(c.Request().Header.Get("Authorization"))
			if token == "" {
				return next(c)
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				log.Debug("bearer token rejected",
					"path", c.Request().URL.Path, "error", err)
				return next(c)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithClaims(req.Context(), claims)))
			return next(c)
		}
	}
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
