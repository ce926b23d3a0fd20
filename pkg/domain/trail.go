package domain

// TrailDifficulty grades a trail. Closed vocabulary.
type TrailDifficulty string

const (
	DifficultyEasy     TrailDifficulty = "easy"
	DifficultyModerate TrailDifficulty = "moderate"
	DifficultyHard     TrailDifficulty = "hard"
	DifficultyExpert   TrailDifficulty = "expert"
)

// TrailType describes the route shape.
type TrailType string

const (
	TrailLoop         TrailType = "loop"
	TrailOutAndBack   TrailType = "out_and_back"
	TrailPointToPoint TrailType = "point_to_point"
)

// Trail is a hikeable route. Partitioned by region so trails that are
// browsed together are stored together.
type Trail struct {
	Document `bson:",inline"`

	Name            string               `json:"name" bson:"name" validate:"required,max=200"`
	Description     string               `json:"description" bson:"description" validate:"max=5000"`
	Location        TrailLocation        `json:"location" bson:"location"`
	Characteristics TrailCharacteristics `json:"characteristics" bson:"characteristics"`
	Features        TrailFeatures        `json:"features" bson:"features"`
	Safety          TrailSafety          `json:"safety" bson:"safety"`
	Amenities       TrailAmenities       `json:"amenities" bson:"amenities"`
	Ratings         TrailRatings         `json:"ratings" bson:"ratings"`
	IsActive        bool                 `json:"isActive" bson:"isActive"`
}

// TrailLocation places the trail geographically. Region doubles as the
// partition key.
type TrailLocation struct {
	Region    string        `json:"region" bson:"region" validate:"required"`
	Park      string        `json:"park" bson:"park"`
	Country   string        `json:"country" bson:"country" validate:"required"`
	Start     Coordinates   `json:"start" bson:"start"`
	End       Coordinates   `json:"end" bson:"end"`
	Waypoints []Coordinates `json:"waypoints,omitempty" bson:"waypoints,omitempty"`
}

// TrailCharacteristics are the physical attributes used by range filters.
type TrailCharacteristics struct {
	Difficulty       TrailDifficulty `json:"difficulty" bson:"difficulty" validate:"required,oneof=easy moderate hard expert"`
	DistanceKm       float64         `json:"distanceKm" bson:"distanceKm" validate:"gt=0"`
	DurationMinHours float64         `json:"durationMinHours" bson:"durationMinHours" validate:"gte=0"`
	DurationMaxHours float64         `json:"durationMaxHours" bson:"durationMaxHours" validate:"gtefield=DurationMinHours"`
	ElevationGainM   float64         `json:"elevationGainM" bson:"elevationGainM" validate:"gte=0"`
	ElevationProfile []float64       `json:"elevationProfile,omitempty" bson:"elevationProfile,omitempty"`
	Type             TrailType       `json:"type" bson:"type" validate:"required,oneof=loop out_and_back point_to_point"`
	Surfaces         []string        `json:"surfaces" bson:"surfaces"`
}

// TrailFeatures flag points of interest and seasonality.
type TrailFeatures struct {
	Scenic      bool     `json:"scenic" bson:"scenic"`
	Water       bool     `json:"water" bson:"water"`
	Wildlife    []string `json:"wildlife,omitempty" bson:"wildlife,omitempty"`
	BestMonths  []int    `json:"bestMonths,omitempty" bson:"bestMonths,omitempty" validate:"dive,min=1,max=12"`
	AvoidMonths []int    `json:"avoidMonths,omitempty" bson:"avoidMonths,omitempty" validate:"dive,min=1,max=12"`
}

// TrailSafety captures risk information surfaced to planners.
type TrailSafety struct {
	RiskLevel         int      `json:"riskLevel" bson:"riskLevel" validate:"min=1,max=5"`
	Hazards           []string `json:"hazards,omitempty" bson:"hazards,omitempty"`
	PermitRequired    bool     `json:"permitRequired" bson:"permitRequired"`
	EmergencyContacts []string `json:"emergencyContacts,omitempty" bson:"emergencyContacts,omitempty"`
}

// TrailAmenities are trailhead facilities.
type TrailAmenities struct {
	Parking  bool `json:"parking" bson:"parking"`
	Restroom bool `json:"restroom" bson:"restroom"`
	Camping  bool `json:"camping" bson:"camping"`
	Water    bool `json:"water" bson:"water"`
}

// TrailRatings holds the running aggregate of user ratings.
type TrailRatings struct {
	Average   float64          `json:"average" bson:"average" validate:"min=0,max=5"`
	Count     int64            `json:"count" bson:"count" validate:"min=0"`
	Breakdown map[string]int64 `json:"breakdown,omitempty" bson:"breakdown,omitempty"`
}

// Apply folds one star rating (1..5) into the aggregate.
func (r *TrailRatings) Apply(stars int) {
	total := r.Average*float64(r.Count) + float64(stars)
	r.Count++
	r.Average = total / float64(r.Count)
	if r.Breakdown == nil {
		r.Breakdown = make(map[string]int64)
	}
	r.Breakdown[starKey(stars)]++
}

func starKey(stars int) string {
	const keys = "012345"
	if stars < 1 || stars > 5 {
		return "0"
	}
	return keys[stars : stars+1]
}
