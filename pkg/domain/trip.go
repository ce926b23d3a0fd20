package domain

import "time"

// TripStatus is the lifecycle state of a trip plan.
type TripStatus string

const (
	TripPlanning  TripStatus = "planning"
	TripConfirmed TripStatus = "confirmed"
	TripCompleted TripStatus = "completed"
	TripCancelled TripStatus = "cancelled"
)

// tripTransitions enumerates the allowed status moves:
// planning -> confirmed -> completed, with cancelled reachable from
// planning or confirmed. Completed and cancelled are terminal.
var tripTransitions = map[TripStatus][]TripStatus{
	TripPlanning:  {TripConfirmed, TripCancelled},
	TripConfirmed: {TripCompleted, TripCancelled},
	TripCompleted: {},
	TripCancelled: {},
}

// CanTransition reports whether a trip may move from one status to another.
func CanTransition(from, to TripStatus) bool {
	for _, allowed := range tripTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TripPlan is a user's planned hike. Partitioned by the owning user id so a
// user's trips live in one partition.
type TripPlan struct {
	Document `bson:",inline"`

	UserID         string           `json:"userId" bson:"userId" validate:"required"`
	Title          string           `json:"title" bson:"title" validate:"required,max=200"`
	Description    string           `json:"description" bson:"description" validate:"max=5000"`
	Status         TripStatus       `json:"status" bson:"status" validate:"required,oneof=planning confirmed completed cancelled"`
	Dates          TripDates        `json:"dates" bson:"dates"`
	Location       TripLocation     `json:"location" bson:"location"`
	Participants   TripParticipants `json:"participants" bson:"participants"`
	Preferences    TripPreferences  `json:"preferences" bson:"preferences"`
	SelectedTrails []string         `json:"selectedTrails" bson:"selectedTrails"`
	Equipment      []string         `json:"equipment,omitempty" bson:"equipment,omitempty"`
	Budget         *TripBudget      `json:"budget,omitempty" bson:"budget,omitempty"`
}

// TripDates bound the trip window. End must not precede start.
type TripDates struct {
	Start           time.Time `json:"start" bson:"start" validate:"required"`
	End             time.Time `json:"end" bson:"end" validate:"required,gtefield=Start"`
	FlexibilityDays int       `json:"flexibilityDays" bson:"flexibilityDays" validate:"min=0,max=30"`
}

// TripLocation is the target area for the trip.
type TripLocation struct {
	Region         string       `json:"region" bson:"region" validate:"required"`
	Coordinates    *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	SearchRadiusKm float64      `json:"searchRadiusKm" bson:"searchRadiusKm" validate:"gte=0"`
}

// TripParticipants describes who is going.
type TripParticipants struct {
	Count               int            `json:"count" bson:"count" validate:"min=1"`
	FitnessLevels       []FitnessLevel `json:"fitnessLevels" bson:"fitnessLevels" validate:"dive,oneof=beginner intermediate advanced expert"`
	SpecialRequirements []string       `json:"specialRequirements,omitempty" bson:"specialRequirements,omitempty"`
}

// TripPreferences narrow the trail candidates for this trip.
type TripPreferences struct {
	Difficulties []TrailDifficulty `json:"difficulties" bson:"difficulties" validate:"required,min=1,dive,oneof=easy moderate hard expert"`
	Duration     Range             `json:"duration" bson:"duration"`
	Distance     Range             `json:"distance" bson:"distance"`
	Elevation    Range             `json:"elevation" bson:"elevation"`
	TrailTypes   []TrailType       `json:"trailTypes,omitempty" bson:"trailTypes,omitempty" validate:"dive,oneof=loop out_and_back point_to_point"`
}

// TripBudget is the optional spending plan.
type TripBudget struct {
	Amount                float64 `json:"amount" bson:"amount" validate:"gte=0"`
	Currency              string  `json:"currency" bson:"currency" validate:"required,len=3"`
	IncludesAccommodation bool    `json:"includesAccommodation" bson:"includesAccommodation"`
}
