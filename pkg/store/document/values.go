package document

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lookup resolves a possibly dotted field path ("location.region") inside a
// document.
func Lookup(doc Document, field string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(doc)
	for _, part := range strings.Split(field, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Document:
		return m, true
	case primitive.M:
		return m, true
	case primitive.D:
		out := make(map[string]interface{}, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	default:
		return nil, false
	}
}

// Compare orders two document values. Numbers compare numerically, times
// chronologically, strings lexically, bools false<true. Values of
// incomparable kinds order by kind name so sorting stays total.
func Compare(a, b interface{}) int {
	na, nb := Normalize(a), Normalize(b)

	if fa, ok := toFloat(na); ok {
		if fb, ok := toFloat(nb); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if ta, ok := na.(time.Time); ok {
		if tb, ok := nb.(time.Time); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	if sa, ok := na.(string); ok {
		if sb, ok := nb.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	if ba, ok := na.(bool); ok {
		if bb, ok := nb.(bool); ok {
			switch {
			case !ba && bb:
				return -1
			case ba && !bb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(kindName(na), kindName(nb))
}

// Equal reports value equality under Compare semantics.
func Equal(a, b interface{}) bool { return Compare(a, b) == 0 }

// ContainsFold reports case-insensitive substring containment; false when
// the haystack is not a string.
func ContainsFold(haystack interface{}, needle string) bool {
	s, ok := Normalize(haystack).(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
}

// Normalize collapses bson-specific scalar types into plain Go values so
// comparisons behave the same regardless of which store produced the value.
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case primitive.A:
		return []interface{}(t)
	default:
		return v
	}
}

// ToSlice coerces a value into a generic slice, for OpIn evaluation.
func ToSlice(v interface{}) ([]interface{}, bool) {
	switch t := Normalize(v).(type) {
	case []interface{}:
		return t, true
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func kindName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case time.Time:
		return "time"
	default:
		if _, ok := toFloat(v); ok {
			return "number"
		}
		return "other"
	}
}
