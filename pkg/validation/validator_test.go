package validation_test

import (
	"testing"
	"time"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/validation"
)

func validUser() *domain.UserProfile {
	return &domain.UserProfile{
		Email:        "hiker@example.com",
		DisplayName:  "Alex",
		FitnessLevel: domain.FitnessIntermediate,
		Preferences: domain.UserPreferences{
			Difficulties: []domain.TrailDifficulty{domain.DifficultyModerate},
			MaxDistance:  25,
			GroupSize:    2,
		},
		Location: domain.UserLocation{Country: "AT", Region: "alps"},
	}
}

func TestValidateAcceptsValidEntity(t *testing.T) {
	if err := validation.Validate(validUser()); err != nil {
		t.Fatalf("valid profile rejected: %v", err)
	}
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	user := validUser()
	user.Email = "not-an-email"
	user.FitnessLevel = "superhuman"
	user.Preferences.MaxDistance = 0

	err := validation.Validate(user)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	verr := validation.AsError(err)
	if verr == nil {
		t.Fatalf("error is not a validation error: %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("collected %d violations, want 3: %v", len(verr.Fields), verr.Fields)
	}

	byField := map[string]validation.FieldError{}
	for _, f := range verr.Fields {
		byField[f.Field] = f
	}
	if f, ok := byField["Email"]; !ok || f.Constraint != "email" {
		t.Errorf("Email violation = %+v", f)
	}
	if f, ok := byField["FitnessLevel"]; !ok || f.Constraint != "oneof" {
		t.Errorf("FitnessLevel violation = %+v", f)
	}
	// Nested field paths keep their structure but drop the type name.
	if _, ok := byField["Preferences.MaxDistance"]; !ok {
		t.Errorf("missing nested field path, got %v", byField)
	}
}

func TestValidateTripDateOrdering(t *testing.T) {
	trip := &domain.TripPlan{
		UserID: "user-1",
		Title:  "Backwards trip",
		Status: domain.TripPlanning,
		Dates: domain.TripDates{
			Start: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		Location:     domain.TripLocation{Region: "alps"},
		Participants: domain.TripParticipants{Count: 1},
		Preferences: domain.TripPreferences{
			Difficulties: []domain.TrailDifficulty{domain.DifficultyEasy},
		},
	}

	err := validation.Validate(trip)
	verr := validation.AsError(err)
	if verr == nil {
		t.Fatalf("expected a validation error, got %v", err)
	}
	found := false
	for _, f := range verr.Fields {
		if f.Field == "Dates.End" && f.Constraint == "gtefield" {
			found = true
		}
	}
	if !found {
		t.Errorf("end-before-start not reported: %v", verr.Fields)
	}
}

func TestValidateConfidenceRange(t *testing.T) {
	rec := &domain.Recommendation{
		UserID:     "user-1",
		TrailIDs:   []string{"trail-1"},
		Confidence: 1.5,
		Factors:    domain.RecommendationFactors{FitnessMatch: -0.1},
		ExpiresAt:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	err := validation.Validate(rec)
	verr := validation.AsError(err)
	if verr == nil {
		t.Fatalf("expected a validation error, got %v", err)
	}
	byField := map[string]string{}
	for _, f := range verr.Fields {
		byField[f.Field] = f.Constraint
	}
	if byField["Confidence"] != "max" {
		t.Errorf("Confidence 1.5 not rejected: %v", verr.Fields)
	}
	if byField["Factors.FitnessMatch"] != "min" {
		t.Errorf("negative factor score not rejected: %v", verr.Fields)
	}
}

func TestValidateErrorMessage(t *testing.T) {
	user := validUser()
	user.DisplayName = ""
	err := validation.Validate(user)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !validation.Is(err) {
		t.Error("Is() must recognize validation errors")
	}
	if msg := err.Error(); msg == "" || msg == "validation failed" {
		t.Errorf("message carries no field detail: %q", msg)
	}
}
