// Package recovery converts panics in handlers into 500 responses.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/trailhead/trailhead/pkg/middleware/requestid"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// Recovery creates middleware that recovers from panics in downstream
// handlers. The panic and its stack are logged with the request ID, and the
// client receives a generic 500 envelope unless a response was already
// written.
func Recovery(log logger.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					requestID := requestid.GetRequestID(c.Request().Context())
					log.Error("panic recovered",
						"request_id", requestID,
						"panic", fmt.Sprintf("%v", r),
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"stack", string(debug.Stack()),
					)

					if !c.Response().Written() {
						err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
							"error":      "internal_error",
							"message":    "an internal error occurred",
							"request_id": requestID,
						})
						return
					}
					err = fmt.Errorf("panic: %v", r)
				}
			}()

			return next(c)
		}
	}
}
