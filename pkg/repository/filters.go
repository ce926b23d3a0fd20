package repository

import (
	"strings"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/store/document"
)

// Filter translation helpers shared by the entity repositories. Filter
// values always travel as condition parameters; nothing here builds query
// text.

// withList applies the list-filter rule: an empty list adds no condition,
// a single element collapses to equality, longer lists use In.
func withList[S ~string](q document.Query, field string, values []S) document.Query {
	switch len(values) {
	case 0:
		return q
	case 1:
		return q.Where(field, document.OpEqual, string(values[0]))
	default:
		return q.Where(field, document.OpIn, stringValues(values))
	}
}

func stringValues[S ~string](values []S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// withRange emits an inclusive bound condition for each bound that is
// present. A nil range or a nil bound adds nothing.
func withRange(q document.Query, field string, r *domain.Range) document.Query {
	if r == nil {
		return q
	}
	if r.Min != nil {
		q = q.Where(field, document.OpGreaterOrEqual, *r.Min)
	}
	if r.Max != nil {
		q = q.Where(field, document.OpLessOrEqual, *r.Max)
	}
	return q
}

// withText ORs case-insensitive substring matches for the query text across
// the searchable fields. Blank text adds nothing.
func withText(q document.Query, text string, fields ...string) document.Query {
	text = strings.TrimSpace(text)
	if text == "" {
		return q
	}
	conditions := make([]document.Condition, 0, len(fields))
	for _, field := range fields {
		conditions = append(conditions, document.Contains(field, text))
	}
	return q.WhereAny(conditions...)
}

// sortFrom resolves a client-supplied sort key against a whitelist.
// Unrecognized or empty keys fall back to the default sort.
func sortFrom(key string, whitelist map[string]document.Sort, fallback document.Sort) document.Sort {
	if s, ok := whitelist[key]; ok {
		return s
	}
	return fallback
}
