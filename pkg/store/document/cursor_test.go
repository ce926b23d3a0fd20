package document_test

import (
	"errors"
	"testing"
	"time"

	"github.com/trailhead/trailhead/pkg/store/document"
)

func TestCursorRoundTrip(t *testing.T) {
	sort := document.Sort{Field: "ratings.average", Order: document.SortDesc}
	in := document.Cursor{
		SortField: sort.Field,
		SortOrder: sort.Order,
		SortValue: 4.5,
		LastID:    "trail-17",
	}

	token := document.EncodeCursor(in)
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	out, err := document.DecodeCursor(token, sort)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.LastID != in.LastID {
		t.Errorf("LastID = %q, want %q", out.LastID, in.LastID)
	}
	if out.SortField != in.SortField || out.SortOrder != in.SortOrder {
		t.Errorf("sort position = %q/%q, want %q/%q", out.SortField, out.SortOrder, in.SortField, in.SortOrder)
	}
	if v, ok := out.SortValue.(float64); !ok || v != 4.5 {
		t.Errorf("SortValue = %v, want 4.5", out.SortValue)
	}
}

func TestCursorRestoresTimeValues(t *testing.T) {
	sort := document.Sort{Field: "createdAt", Order: document.SortDesc}
	at := time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC)
	token := document.EncodeCursor(document.Cursor{
		SortField: sort.Field,
		SortOrder: sort.Order,
		SortValue: at,
		LastID:    "trip-1",
	})

	out, err := document.DecodeCursor(token, sort)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	restored, ok := out.SortValue.(time.Time)
	if !ok {
		t.Fatalf("SortValue = %T, want time.Time", out.SortValue)
	}
	if !restored.Equal(at) {
		t.Errorf("SortValue = %v, want %v", restored, at)
	}
}

func TestCursorKeepsTimestampLikeStrings(t *testing.T) {
	// A string sort value that happens to parse as RFC3339 must come back
	// as a string, or resuming a name-sorted query would compare the
	// position against strings as a time and skip the rest of the results.
	sort := document.Sort{Field: "name", Order: document.SortAsc}
	token := document.EncodeCursor(document.Cursor{
		SortField: sort.Field,
		SortOrder: sort.Order,
		SortValue: "2024-06-01T00:00:00Z",
		LastID:    "trail-9",
	})

	out, err := document.DecodeCursor(token, sort)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := out.SortValue.(string); !ok || v != "2024-06-01T00:00:00Z" {
		t.Errorf("SortValue = %v (%T), want the original string", out.SortValue, out.SortValue)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"not base64!!", "aGVsbG8", ""} {
		_, err := document.DecodeCursor(token, document.Sort{})
		if !errors.Is(err, document.ErrBadRequest) {
			t.Errorf("DecodeCursor(%q) error = %v, want ErrBadRequest", token, err)
		}
	}
}

func TestDecodeCursorRejectsMissingPosition(t *testing.T) {
	token := document.EncodeCursor(document.Cursor{SortField: "name", SortOrder: document.SortAsc})
	_, err := document.DecodeCursor(token, document.Sort{Field: "name", Order: document.SortAsc})
	if !errors.Is(err, document.ErrBadRequest) {
		t.Errorf("error = %v, want ErrBadRequest", err)
	}
}

func TestDecodeCursorRejectsForeignSort(t *testing.T) {
	token := document.EncodeCursor(document.Cursor{
		SortField: "name",
		SortOrder: document.SortAsc,
		SortValue: "Ridge Loop",
		LastID:    "trail-3",
	})

	cases := []struct {
		name string
		sort document.Sort
	}{
		{"different field", document.Sort{Field: "createdAt", Order: document.SortAsc}},
		{"different order", document.Sort{Field: "name", Order: document.SortDesc}},
		{"no sort", document.Sort{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := document.DecodeCursor(token, tc.sort); !errors.Is(err, document.ErrBadRequest) {
				t.Errorf("error = %v, want ErrBadRequest", err)
			}
		})
	}
}
