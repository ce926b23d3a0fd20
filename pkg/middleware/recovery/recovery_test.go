package recovery_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trailhead/trailhead/pkg/middleware/recovery"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/server/router"
	ginadapter "github.com/trailhead/trailhead/pkg/server/router/gin"
)

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	r := ginadapter.NewRouter()
	r.Use(recovery.Recovery(logger.NewNop()))
	r.GET("/boom", func(c router.Context) error {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "internal_error" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRecoveryLeavesHealthyHandlersAlone(t *testing.T) {
	r := ginadapter.NewRouter()
	r.Use(recovery.Recovery(logger.NewNop()))
	r.GET("/ok", func(c router.Context) error {
		return c.String(http.StatusOK, "fine")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if w.Code != http.StatusOK || w.Body.String() != "fine" {
		t.Errorf("status = %d, body %q", w.Code, w.Body.String())
	}
}

func TestRecoveryAfterPartialWrite(t *testing.T) {
	r := ginadapter.NewRouter()
	r.Use(recovery.Recovery(logger.NewNop()))
	r.GET("/late", func(c router.Context) error {
		if err := c.String(http.StatusAccepted, "partial"); err != nil {
			return err
		}
		panic("after write")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))

	// The original status stands; no second response is attempted.
	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want the already-written 202", w.Code)
	}
}
