package domain_test

import (
	"math"
	"testing"

	"github.com/trailhead/trailhead/pkg/domain"
)

func TestRatingsApply(t *testing.T) {
	var r domain.TrailRatings

	r.Apply(4)
	r.Apply(5)
	if r.Count != 2 {
		t.Errorf("count = %d, want 2", r.Count)
	}
	if math.Abs(r.Average-4.5) > 1e-9 {
		t.Errorf("average = %v, want 4.5", r.Average)
	}

	r.Apply(3)
	if math.Abs(r.Average-4.0) > 1e-9 {
		t.Errorf("average = %v, want 4.0", r.Average)
	}
	if r.Breakdown["4"] != 1 || r.Breakdown["5"] != 1 || r.Breakdown["3"] != 1 {
		t.Errorf("breakdown = %v", r.Breakdown)
	}
}

func TestRatingsApplyOntoExistingAggregate(t *testing.T) {
	r := domain.TrailRatings{Average: 4.0, Count: 3}
	r.Apply(5)
	if r.Count != 4 {
		t.Errorf("count = %d, want 4", r.Count)
	}
	if math.Abs(r.Average-4.25) > 1e-9 {
		t.Errorf("average = %v, want 4.25", r.Average)
	}
}
