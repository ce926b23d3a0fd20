package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/trailhead/trailhead/pkg/auth"
	"github.com/trailhead/trailhead/pkg/server/router"
)

// nowFunc lets tests pin the clock used for expiry checks.
type nowFunc func() time.Time

func defaultNow() time.Time { return time.Now().UTC() }

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// caller returns the authenticated identity, or nil when the request
// carries none.
func caller(c router.Context) *auth.Claims {
	return auth.GetClaims(c.Request().Context())
}

// pageSize parses the limit query parameter, clamped to [1, 100].
func pageSize(c router.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultPageSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// continuationToken returns the cursor supplied by the client.
func continuationToken(c router.Context) string {
	return c.Query("continuationToken")
}

// etagFrom resolves the concurrency tag for an update: the If-Match header
// wins, otherwise the etag carried in the request body.
func etagFrom(c router.Context, bodyETag string) string {
	if header := strings.Trim(c.Request().Header.Get("If-Match"), `"`); header != "" {
		return header
	}
	return bodyETag
}

// csvParam splits a comma-separated query parameter, dropping blanks.
func csvParam(c router.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// floatParam parses an optional float query parameter. Returns nil when
// absent or unparseable.
func floatParam(c router.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// intParam parses an optional integer query parameter.
func intParam(c router.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
