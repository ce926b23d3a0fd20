package domain

// FitnessLevel describes how demanding a hike a user can take on.
type FitnessLevel string

const (
	FitnessBeginner     FitnessLevel = "beginner"
	FitnessIntermediate FitnessLevel = "intermediate"
	FitnessAdvanced     FitnessLevel = "advanced"
	FitnessExpert       FitnessLevel = "expert"
)

// UserProfile is a registered hiker. Self-partitioned: the partition key is
// the profile id, so point lookups never fan out.
type UserProfile struct {
	Document `bson:",inline"`

	Email        string          `json:"email" bson:"email" validate:"required,email"`
	DisplayName  string          `json:"displayName" bson:"displayName" validate:"required,max=100"`
	FitnessLevel FitnessLevel    `json:"fitnessLevel" bson:"fitnessLevel" validate:"required,oneof=beginner intermediate advanced expert"`
	Preferences  UserPreferences `json:"preferences" bson:"preferences"`
	Location     UserLocation    `json:"location" bson:"location"`
	IsActive     bool            `json:"isActive" bson:"isActive"`
}

// UserPreferences drive trail matching and trip defaults.
type UserPreferences struct {
	Difficulties []TrailDifficulty `json:"difficulties" bson:"difficulties" validate:"required,min=1,dive,oneof=easy moderate hard expert"`
	MaxDistance  float64           `json:"maxDistance" bson:"maxDistance" validate:"gt=0"`
	TerrainTypes []string          `json:"terrainTypes" bson:"terrainTypes"`
	GroupSize    int               `json:"groupSize" bson:"groupSize" validate:"min=1"`
}

// UserLocation is the hiker's home base, used to bias search by region.
type UserLocation struct {
	City        string       `json:"city" bson:"city"`
	State       string       `json:"state" bson:"state"`
	Country     string       `json:"country" bson:"country" validate:"required"`
	Region      string       `json:"region" bson:"region"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// UserStatistics is the computed summary returned by the statistics
// endpoint; it is never persisted.
type UserStatistics struct {
	TotalTrips     int64            `json:"totalTrips"`
	TripsByStatus  map[string]int64 `json:"tripsByStatus"`
	ActiveRecCount int64            `json:"activeRecommendations"`
}
