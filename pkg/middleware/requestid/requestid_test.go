package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/trailhead/trailhead/pkg/middleware/requestid"
	"github.com/trailhead/trailhead/pkg/server/router"
	ginadapter "github.com/trailhead/trailhead/pkg/server/router/gin"
)

func pingRouter(capture *string) router.Router {
	r := ginadapter.NewRouter()
	r.Use(requestid.RequestID())
	r.GET("/ping", func(c router.Context) error {
		*capture = requestid.GetRequestID(c.Request().Context())
		return c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRequestIDKeepsClientID(t *testing.T) {
	var seen string
	r := pingRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestid.HeaderName, "client-supplied-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "client-supplied-id" {
		t.Errorf("handler saw %q", seen)
	}
	if got := w.Header().Get(requestid.HeaderName); got != "client-supplied-id" {
		t.Errorf("echoed %q", got)
	}
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	var seen string
	r := pingRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if seen == "" {
		t.Fatal("no request ID reached the handler")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated ID %q is not a UUID: %v", seen, err)
	}
	if got := w.Header().Get(requestid.HeaderName); got != seen {
		t.Errorf("header %q does not match context ID %q", got, seen)
	}
}

func TestRequestIDsAreUniquePerRequest(t *testing.T) {
	var seen string
	r := pingRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	first := seen
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if first == seen {
		t.Errorf("two requests shared ID %q", first)
	}
}

func TestGetRequestIDOnBareContext(t *testing.T) {
	if got := requestid.GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID = %q, want empty", got)
	}
}
