package document_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trailhead/trailhead/pkg/store/document"
)

func TestLookupDottedPaths(t *testing.T) {
	doc := document.Document{
		"name": "Ridge Loop",
		"location": map[string]interface{}{
			"region": "alps",
			"park":   "Hohe Tauern",
		},
	}

	v, ok := document.Lookup(doc, "location.region")
	if !ok || v != "alps" {
		t.Errorf("Lookup(location.region) = %v, %v", v, ok)
	}
	if _, ok := document.Lookup(doc, "location.missing"); ok {
		t.Error("expected missing leaf to report absent")
	}
	if _, ok := document.Lookup(doc, "name.region"); ok {
		t.Error("expected path through a scalar to report absent")
	}
}

func TestLookupBsonShapes(t *testing.T) {
	doc := document.Document{
		"characteristics": primitive.M{"distanceKm": 12.5},
		"ratings":         primitive.D{{Key: "average", Value: 4.2}},
	}
	if v, ok := document.Lookup(doc, "characteristics.distanceKm"); !ok || v != 12.5 {
		t.Errorf("Lookup through primitive.M = %v, %v", v, ok)
	}
	if v, ok := document.Lookup(doc, "ratings.average"); !ok || v != 4.2 {
		t.Errorf("Lookup through primitive.D = %v, %v", v, ok)
	}
}

func TestCompareMixedNumericKinds(t *testing.T) {
	if c := document.Compare(int32(3), 3.0); c != 0 {
		t.Errorf("Compare(int32(3), 3.0) = %d, want 0", c)
	}
	if c := document.Compare(int64(2), 10.5); c >= 0 {
		t.Errorf("Compare(int64(2), 10.5) = %d, want < 0", c)
	}
}

func TestCompareDateTimes(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	later := primitive.NewDateTimeFromTime(earlier.Add(time.Hour))
	if c := document.Compare(earlier, later); c >= 0 {
		t.Errorf("Compare(earlier, later) = %d, want < 0", c)
	}
	if c := document.Compare(later, later); c != 0 {
		t.Errorf("Compare(t, t) = %d, want 0", c)
	}
}

func TestCompareIsTotalAcrossKinds(t *testing.T) {
	// Incomparable kinds still order deterministically.
	a, b := "text", 42
	if document.Compare(a, b) != -document.Compare(b, a) {
		t.Error("cross-kind comparison is not antisymmetric")
	}
}

func TestContainsFold(t *testing.T) {
	if !document.ContainsFold("Eagle Ridge Trail", "ridge") {
		t.Error("expected case-insensitive match")
	}
	if document.ContainsFold(12.5, "12") {
		t.Error("non-string haystack must not match")
	}
}

func TestToSlice(t *testing.T) {
	if got, ok := document.ToSlice([]string{"easy", "hard"}); !ok || len(got) != 2 {
		t.Errorf("ToSlice([]string) = %v, %v", got, ok)
	}
	if got, ok := document.ToSlice(primitive.A{"a", "b", "c"}); !ok || len(got) != 3 {
		t.Errorf("ToSlice(primitive.A) = %v, %v", got, ok)
	}
	if _, ok := document.ToSlice("scalar"); ok {
		t.Error("scalar must not coerce to a slice")
	}
}
