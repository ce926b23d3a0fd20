// Package middleware holds shared keys used by the per-concern middleware
// subpackages to exchange per-request values.
package middleware

// ContextKey is the type for context keys set by middleware.
type ContextKey string

const (
	// RequestIDKey carries the request correlation ID.
	RequestIDKey ContextKey = "request_id"
)
