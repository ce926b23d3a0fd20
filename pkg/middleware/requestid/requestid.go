// Package requestid assigns a correlation ID to every request.
package requestid

import (
	"context"

	"github.com/google/uuid"

	"github.com/trailhead/trailhead/pkg/middleware"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// HeaderName is the header used to accept and echo request IDs.
const HeaderName = "X-Request-ID"

// RequestID creates middleware that ensures every request carries an ID.
// An ID supplied by the client in X-Request-ID is kept, otherwise a new
// UUID is generated. The ID is stored in the request context, mirrored
// into the router context, and echoed in the response header.
func RequestID() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			req := c.Request()

			requestID := req.Header.Get(HeaderName)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, requestID)
			c.SetRequest(req.WithContext(ctx))
			c.Set(string(middleware.RequestIDKey), requestID)
			c.Response().Header().Set(HeaderName, requestID)

			return next(c)
		}
	}
}

// GetRequestID returns the request ID stored in ctx, or "" when absent.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}
