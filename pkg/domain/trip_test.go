package domain_test

import (
	"testing"

	"github.com/trailhead/trailhead/pkg/domain"
)

func TestCanTransition(t *testing.T) {
	statuses := []domain.TripStatus{
		domain.TripPlanning, domain.TripConfirmed, domain.TripCompleted, domain.TripCancelled,
	}

	allowed := map[[2]domain.TripStatus]bool{
		{domain.TripPlanning, domain.TripConfirmed}:  true,
		{domain.TripPlanning, domain.TripCancelled}:  true,
		{domain.TripConfirmed, domain.TripCompleted}: true,
		{domain.TripConfirmed, domain.TripCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]domain.TripStatus{from, to}]
			if got := domain.CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if domain.CanTransition("draft", domain.TripConfirmed) {
		t.Error("unknown source status must not transition anywhere")
	}
	if domain.CanTransition(domain.TripPlanning, "archived") {
		t.Error("unknown target status must be rejected")
	}
}
