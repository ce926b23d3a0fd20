package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the decoded form of a continuation token: the sort position of
// the last item on the previous page. Tokens are opaque to callers.
// SortKind records the value's original type when JSON cannot carry it, so
// decoding restores it without guessing from the value's shape.
type Cursor struct {
	SortField string      `json:"f,omitempty"`
	SortOrder SortOrder   `json:"o,omitempty"`
	SortValue interface{} `json:"v,omitempty"`
	SortKind  string      `json:"t,omitempty"`
	LastID    string      `json:"id"`
}

const cursorKindTime = "time"

// EncodeCursor serializes a cursor into an opaque continuation token. Time
// sort values are tagged so DecodeCursor can restore them; a string that
// merely looks like a timestamp stays a string.
func EncodeCursor(c Cursor) string {
	if t, ok := Normalize(c.SortValue).(time.Time); ok {
		c.SortValue = t.Format(time.RFC3339Nano)
		c.SortKind = cursorKindTime
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a continuation token and validates it against the
// query's sort. A token produced under a different sort is rejected as
// ErrBadRequest: resuming it would skip or repeat items.
func DecodeCursor(token string, sort Sort) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: undecodable continuation token", ErrBadRequest)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: undecodable continuation token", ErrBadRequest)
	}
	if c.LastID == "" {
		return Cursor{}, fmt.Errorf("%w: continuation token missing position", ErrBadRequest)
	}
	if c.SortField != sort.Field || (c.SortField != "" && c.SortOrder != sort.Order) {
		return Cursor{}, fmt.Errorf("%w: continuation token does not match query sort", ErrBadRequest)
	}
	// JSON round-tripping erases the sort value's type; only values tagged
	// as times at encode time are restored, so a string sort key whose
	// values happen to parse as timestamps keeps comparing as strings.
	if c.SortKind == cursorKindTime {
		s, ok := c.SortValue.(string)
		if !ok {
			return Cursor{}, fmt.Errorf("%w: continuation token carries a malformed time position", ErrBadRequest)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Cursor{}, fmt.Errorf("%w: continuation token carries a malformed time position", ErrBadRequest)
		}
		c.SortValue = t
	}
	return c, nil
}
