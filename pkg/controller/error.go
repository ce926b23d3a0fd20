package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/trailhead/trailhead/pkg/middleware"
	"github.com/trailhead/trailhead/pkg/store/document"
	"github.com/trailhead/trailhead/pkg/validation"
)

// AppError is the application error contract handlers may return when they
// need full control over the response.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *AppError) Unwrap() error { return e.Err }

// ErrorResponse is the error envelope returned to clients.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Message   string                 `json:"message,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// MapError classifies an error into an HTTP status and response envelope.
// Validation failures and the store taxonomy map to their documented
// statuses; anything unrecognized becomes a generic 500 so store internals
// never leak to clients.
func MapError(ctx context.Context, err error) (int, ErrorResponse) {
	requestID := getRequestID(ctx)

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ErrorResponse{
			Error:     errorCategory(status),
			Code:      appErr.Code,
			Message:   appErr.Message,
			RequestID: requestID,
			Details:   appErr.Details,
		}
	}

	if verr := validation.AsError(err); verr != nil {
		return http.StatusBadRequest, ErrorResponse{
			Error:     "validation_error",
			Code:      "validation.failed",
			Message:   "one or more fields are invalid",
			RequestID: requestID,
			Details:   map[string]interface{}{"fields": verr.Fields},
		}
	}

	switch {
	case document.IsNotFound(err):
		return http.StatusNotFound, ErrorResponse{
			Error:     "not_found",
			Code:      "resource.not_found",
			Message:   "resource not found",
			RequestID: requestID,
		}
	case document.IsConflict(err):
		return http.StatusConflict, ErrorResponse{
			Error:     "conflict",
			Code:      "resource.conflict",
			Message:   "resource already exists",
			RequestID: requestID,
		}
	case document.IsPreconditionFailed(err):
		return http.StatusConflict, ErrorResponse{
			Error:     "conflict",
			Code:      "resource.stale",
			Message:   "resource was modified concurrently, re-read and retry",
			RequestID: requestID,
		}
	case document.IsBadRequest(err):
		return http.StatusBadRequest, ErrorResponse{
			Error:     "validation_error",
			Code:      "request.invalid",
			Message:   "malformed request",
			RequestID: requestID,
		}
	case document.IsThrottled(err):
		return http.StatusTooManyRequests, ErrorResponse{
			Error:     "rate_limited",
			Code:      "request.throttled",
			Message:   "too many requests, retry later",
			RequestID: requestID,
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:     "internal_server_error",
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		}
	}
}

// getRequestID extracts the request ID from context.
func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// NewValidationError creates a 400 error with structured details.
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       "validation.failed",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// NewNotFoundError creates a 404 error. Also used for entities the caller
// does not own, so ownership is never revealed.
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:       "resource.not_found",
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a 409 error.
func NewConflictError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       "resource.conflict",
		Message:    message,
		HTTPStatus: http.StatusConflict,
		Details:    details,
	}
}

// NewUnauthorizedError creates a 401 error.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:       "auth.unauthorized",
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInternalError creates a 500 error wrapping its cause.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Code:       "internal.error",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        cause,
	}
}

func errorCategory(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		if status >= 500 {
			return "internal_server_error"
		}
		return "application_error"
	}
}
