// Package controller holds the HTTP handlers for the public API and the
// shared response and error envelopes.
package controller

import (
	"net/http"

	"github.com/trailhead/trailhead/pkg/server/router"
)

// SuccessResponse wraps response data in the service's envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// PageResponse is the envelope for cursor-paginated listings.
type PageResponse struct {
	Data              interface{} `json:"data"`
	ContinuationToken string      `json:"continuationToken,omitempty"`
	HasMore           bool        `json:"hasMore"`
	RequestID         string      `json:"request_id,omitempty"`
}

// Success sends 200 with the data envelope.
func Success(c router.Context, data interface{}) error {
	return c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c.Request().Context()),
	})
}

// Created sends 201 with the data envelope.
func Created(c router.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c.Request().Context()),
	})
}

// Page sends 200 with a paginated envelope.
func Page(c router.Context, data interface{}, continuationToken string, hasMore bool) error {
	return c.JSON(http.StatusOK, PageResponse{
		Data:              data,
		ContinuationToken: continuationToken,
		HasMore:           hasMore,
		RequestID:         getRequestID(c.Request().Context()),
	})
}

// NoContent sends 204 with no body.
func NoContent(c router.Context) error {
	return c.JSON(http.StatusNoContent, nil)
}

// Error maps err onto the error envelope and sends it.
func Error(c router.Context, err error) error {
	statusCode, errorResponse := MapError(c.Request().Context(), err)
	return c.JSON(statusCode, errorResponse)
}
