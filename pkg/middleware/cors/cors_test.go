package cors_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trailhead/trailhead/pkg/middleware/cors"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// fakeContext drives the middleware directly so OPTIONS preflights can be
// tested without a registered route.
type fakeContext struct {
	req  *http.Request
	resp router.ResponseWriter
}

type fakeResponse struct {
	*httptest.ResponseRecorder
	status  int
	written bool
}

func (w *fakeResponse) Status() int { return w.status }

func (w *fakeResponse) Written() bool { return w.written }

func (w *fakeResponse) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseRecorder.WriteHeader(code)
}

func newFakeContext(req *http.Request) (*fakeContext, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return &fakeContext{req: req, resp: &fakeResponse{ResponseRecorder: rec}}, rec
}

func (c *fakeContext) Request() *http.Request { return c.req }

func (c *fakeContext) SetRequest(r *http.Request) { c.req = r }

func (c *fakeContext) Response() router.ResponseWriter { return c.resp }

func (c *fakeContext) SetResponse(w router.ResponseWriter) { c.resp = w }
func (c *fakeContext) Param(string) string { return "" }

func (c *fakeContext) Query(string) string { return "" }

func (c *fakeContext) Bind(v interface{}) error { return json.NewDecoder(c.req.Body).Decode(v) }

func (c *fakeContext) Get(string) interface{} { return nil }

func (c *fakeContext) Set(string, interface{}) {}
func (c *fakeContext) JSON(code int, v interface{}) error {
	c.resp.WriteHeader(code)
	return json.NewEncoder(c.resp).Encode(v)
}
func (c *fakeContext) String(code int, s string) error {
	c.resp.WriteHeader(code)
	_, err := c.resp.Write([]byte(s))
	return err
}

func serveCORS(t *testing.T, cfg cors.Config, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	nextCalled := false
	handler := cors.CORS(cfg)(func(c router.Context) error {
		nextCalled = true
		return c.String(http.StatusOK, "ok")
	})
	ctx, rec := newFakeContext(req)
	if err := handler(ctx); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec, nextCalled
}

func TestCORSWildcardOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/trails", nil)
	req.Header.Set("Origin", "https://app.example.com")

	rec, nextCalled := serveCORS(t, cors.DefaultConfig(), req)
	if !nextCalled {
		t.Fatal("simple request must reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/trails", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec, nextCalled := serveCORS(t, cors.DefaultConfig(), req)
	if nextCalled {
		t.Fatal("preflight must be answered by the middleware")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing Allow-Methods")
	}
	if rec.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("missing Allow-Headers")
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("Max-Age = %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	cfg := cors.Config{AllowedOrigins: []string{"https://trusted.example.com"}}
	req := httptest.NewRequest(http.MethodGet, "/v1/trails", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	rec, nextCalled := serveCORS(t, cfg, req)
	if !nextCalled {
		t.Fatal("disallowed origins still reach the handler, just without CORS headers")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want none", got)
	}
}

func TestCORSCredentialedOrigin(t *testing.T) {
	cfg := cors.Config{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowCredentials: true,
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/trails", nil)
	req.Header.Set("Origin", "https://app.example.com")

	rec, _ := serveCORS(t, cfg, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q, want the exact origin", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q", got)
	}
}

func TestCORSNoOriginHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/trails", nil)

	rec, nextCalled := serveCORS(t, cors.DefaultConfig(), req)
	if !nextCalled {
		t.Fatal("same-origin requests must pass straight through")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q on a same-origin request", got)
	}
}
