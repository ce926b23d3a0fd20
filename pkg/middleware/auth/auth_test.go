package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trailhead/trailhead/pkg/auth"
	middlewareauth "github.com/trailhead/trailhead/pkg/middleware/auth"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/server/router"
	ginadapter "github.com/trailhead/trailhead/pkg/server/router/gin"
)

func bearerRouter(t *testing.T) (*auth.TokenService, router.Router, *[]*auth.Claims) {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.Config{
		Secret: "0123456789abcdef0123456789abcdef",
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	var seen []*auth.Claims
	r := ginadapter.NewRouter()
	r.Use(middlewareauth.Bearer(tokens, logger.NewNop()))
	r.GET("/whoami", func(c router.Context) error {
		seen = append(seen, auth.GetClaims(c.Request().Context()))
		return c.String(http.StatusOK, "ok")
	})
	return tokens, r, &seen
}

func get(r router.Router, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerInjectsClaims(t *testing.T) {
	tokens, r, seen := bearerRouter(t)
	pair, err := tokens.Issue("user-1", "hiker@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := get(r, "Bearer "+pair.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(*seen) != 1 || (*seen)[0] == nil || (*seen)[0].Subject != "user-1" {
		t.Fatalf("claims = %+v", *seen)
	}
}

func TestBearerSchemeIsCaseInsensitive(t *testing.T) {
	tokens, r, seen := bearerRouter(t)
	pair, err := tokens.Issue("user-1", "hiker@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := get(r, "bearer "+pair.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(*seen) != 1 || (*seen)[0] == nil {
		t.Fatal("lowercase scheme was not accepted")
	}
}

func TestBearerPassesAnonymousThrough(t *testing.T) {
	_, r, seen := bearerRouter(t)

	w := get(r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, the middleware itself never rejects", w.Code)
	}
	if len(*seen) != 1 || (*seen)[0] != nil {
		t.Fatalf("claims = %+v, want nil for anonymous", *seen)
	}
}

func TestBearerTreatsInvalidTokenAsAbsent(t *testing.T) {
	_, r, seen := bearerRouter(t)

	for _, header := range []string{
		"Bearer not-a-token",
		"Basic dXNlcjpwYXNz",
		"Bearer",
	} {
		*seen = (*seen)[:0]
		w := get(r, header)
		if w.Code != http.StatusOK {
			t.Errorf("%q: status = %d", header, w.Code)
		}
		if len(*seen) != 1 || (*seen)[0] != nil {
			t.Errorf("%q: claims = %+v, want nil", header, *seen)
		}
	}
}
