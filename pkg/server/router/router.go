// Package router abstracts HTTP routing behind a small interface so
// handlers and middleware never depend on a concrete framework.
package router

import "net/http"

// Router registers handlers for HTTP methods and composes middleware.
type Router interface {
	GET(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	POST(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PUT(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	DELETE(path string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PATCH(path string, handler HandlerFunc, middleware ...MiddlewareFunc)

	// Group creates a route group with a common prefix and middleware.
	Group(prefix string, middleware ...MiddlewareFunc) Router

	// Use applies middleware to all routes registered afterwards.
	Use(middleware ...MiddlewareFunc)

	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// HandlerFunc handles one request. A returned error that was not already
// written as a response becomes a 500.
type HandlerFunc func(Context) error

// MiddlewareFunc wraps a handler.
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// Context exposes the request and response in a router-agnostic way.
type Context interface {
	Request() *http.Request
	SetRequest(r *http.Request)
	Response() ResponseWriter
	SetResponse(w ResponseWriter)

	// Param returns a URL path parameter, e.g. the id in /trips/:id.
	Param(name string) string
	// Query returns a query string parameter.
	Query(name string) string

	// Bind decodes the JSON request body into v.
	Bind(v interface{}) error

	JSON(code int, v interface{}) error
	String(code int, s string) error

	// Get and Set share per-request values between middleware and handlers.
	Get(key string) interface{}
	Set(key string, value interface{})
}

// ResponseWriter tracks whether and with what status the response was
// written.
type ResponseWriter interface {
	http.ResponseWriter

	Status() int
	Written() bool
}
