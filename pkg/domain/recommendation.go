package domain

import "time"

// Recommendation is a scored trail suggestion for a user, optionally tied
// to a trip. Recommendations are disposable: each carries an expiry and
// readers ignore expired ones. Partitioned by user id.
type Recommendation struct {
	Document `bson:",inline"`

	UserID       string                 `json:"userId" bson:"userId" validate:"required"`
	TripID       string                 `json:"tripId,omitempty" bson:"tripId,omitempty"`
	TrailIDs     []string               `json:"trailIds" bson:"trailIds" validate:"required,min=1"`
	Reasoning    string                 `json:"reasoning" bson:"reasoning"`
	Confidence   float64                `json:"confidence" bson:"confidence" validate:"min=0,max=1"`
	Factors      RecommendationFactors  `json:"factors" bson:"factors"`
	Alternatives []RecommendationOption `json:"alternatives,omitempty" bson:"alternatives,omitempty" validate:"dive"`
	ExpiresAt    time.Time              `json:"expiresAt" bson:"expiresAt" validate:"required"`
}

// RecommendationFactors break the confidence down per criterion. Each score
// is in [0,1].
type RecommendationFactors struct {
	FitnessMatch         float64 `json:"fitnessMatch" bson:"fitnessMatch" validate:"min=0,max=1"`
	PreferenceAlignment  float64 `json:"preferenceAlignment" bson:"preferenceAlignment" validate:"min=0,max=1"`
	SeasonalSuitability  float64 `json:"seasonalSuitability" bson:"seasonalSuitability" validate:"min=0,max=1"`
	SafetyConsiderations float64 `json:"safetyConsiderations" bson:"safetyConsiderations" validate:"min=0,max=1"`
}

// RecommendationOption is a runner-up trail with its own score.
type RecommendationOption struct {
	TrailID    string  `json:"trailId" bson:"trailId" validate:"required"`
	Reason     string  `json:"reason" bson:"reason"`
	Confidence float64 `json:"confidence" bson:"confidence" validate:"min=0,max=1"`
}

// Expired reports whether the recommendation is past its expiry.
func (r *Recommendation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
