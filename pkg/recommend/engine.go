// Package recommend implements the trail recommendation engine. Scoring is
// a deterministic heuristic over the trail catalog, not a learned model:
// candidates come from the regular search filter and each factor score is
// computed from profile and seasonality rules.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/resilience"
)

const (
	// MaxResults caps how many trails one recommendation may carry.
	MaxResults = 5

	// candidatePoolSize is how many search hits are scored before ranking.
	candidatePoolSize = 25

	// DefaultTTL is the recommendation lifetime when none is configured.
	DefaultTTL = 14 * 24 * time.Hour
	MinTTL     = 7 * 24 * time.Hour
	MaxTTL     = 30 * 24 * time.Hour

	// Catalog lookups fail fast after this many consecutive store errors.
	breakerMaxFailures = 5
	breakerCooldown    = 30 * time.Second
)

// Request describes who the recommendation is for and what to match.
type Request struct {
	User *domain.UserProfile
	// Trip scopes the recommendation to a trip and its preferences.
	// Optional.
	Trip *domain.TripPlan
	// Region overrides the search region. Falls back to the trip's region,
	// then the user's home region.
	Region       string
	Difficulties []domain.TrailDifficulty
	MaxResults   int
}

// Engine ranks catalog trails for a user.
type Engine struct {
	trails  *repository.TrailRepository
	logger  logger.Logger
	ttl     time.Duration
	now     func() time.Time
	breaker *resilience.CircuitBreaker
}

// Option configures the engine.
type Option func(*Engine)

// WithTTL sets the recommendation lifetime, clamped to [7d, 30d].
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl < MinTTL {
			ttl = MinTTL
		}
		if ttl > MaxTTL {
			ttl = MaxTTL
		}
		e.ttl = ttl
	}
}

// WithClock overrides the engine clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a recommendation engine over the trail catalog.
func NewEngine(trails *repository.TrailRepository, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		trails:  trails,
		logger:  log,
		ttl:     DefaultTTL,
		now:     time.Now,
		breaker: resilience.NewCircuitBreaker(breakerMaxFailures, breakerCooldown),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend selects up to five trails for the request, scores them, and
// returns an unsaved Recommendation. The caller persists it.
func (e *Engine) Recommend(ctx context.Context, req Request) (*domain.Recommendation, error) {
	if req.User == nil {
		return nil, fmt.Errorf("recommend: user profile is required")
	}
	limit := req.MaxResults
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	filter := e.candidateFilter(req)
	var page repository.PageResult[*domain.Trail]
	err := e.breaker.Execute(func() error {
		var searchErr error
		page, searchErr = e.trails.Search(ctx, filter, candidatePoolSize, "")
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	if len(page.Items) == 0 {
		return nil, fmt.Errorf("recommend: no trails match the request")
	}

	now := e.now().UTC()
	scored := make([]scoredTrail, 0, len(page.Items))
	for _, trail := range page.Items {
		scored = append(scored, scoredTrail{
			trail:   trail,
			factors: e.score(req, trail, now),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		ci, cj := confidence(scored[i].factors), confidence(scored[j].factors)
		if ci != cj {
			return ci > cj
		}
		return scored[i].trail.ID < scored[j].trail.ID
	})

	picked := scored
	if len(picked) > limit {
		picked = picked[:limit]
	}

	rec := &domain.Recommendation{
		UserID:     req.User.ID,
		TrailIDs:   make([]string, 0, len(picked)),
		Factors:    averageFactors(picked),
		ExpiresAt:  now.Add(e.ttl),
	}
	if req.Trip != nil {
		rec.TripID = req.Trip.ID
	}
	for _, s := range picked {
		rec.TrailIDs = append(rec.TrailIDs, s.trail.ID)
	}
	rec.Confidence = confidence(rec.Factors)
	rec.Reasoning = e.reasoning(req, picked)

	for _, s := range scored[len(picked):] {
		if len(rec.Alternatives) == 3 {
			break
		}
		rec.Alternatives = append(rec.Alternatives, domain.RecommendationOption{
			TrailID:    s.trail.ID,
			Reason:     fmt.Sprintf("runner-up in %s, rated %.1f", s.trail.Location.Region, s.trail.Ratings.Average),
			Confidence: confidence(s.factors),
		})
	}

	e.logger.Debug("built recommendation",
		"user_id", req.User.ID, "trails", len(rec.TrailIDs), "confidence", rec.Confidence)
	return rec, nil
}

type scoredTrail struct {
	trail   *domain.Trail
	factors domain.RecommendationFactors
}

func (e *Engine) candidateFilter(req Request) repository.TrailFilter {
	filter := repository.TrailFilter{
		Region:       req.Region,
		Difficulties: req.Difficulties,
		SortKey:      "rating",
	}
	if filter.Region == "" && req.Trip != nil {
		filter.Region = req.Trip.Location.Region
	}
	if filter.Region == "" {
		filter.Region = req.User.Location.Region
	}
	if len(filter.Difficulties) == 0 {
		if req.Trip != nil && len(req.Trip.Preferences.Difficulties) > 0 {
			filter.Difficulties = req.Trip.Preferences.Difficulties
		} else {
			filter.Difficulties = req.User.Preferences.Difficulties
		}
	}
	if req.User.Preferences.MaxDistance > 0 {
		max := req.User.Preferences.MaxDistance
		filter.Distance = &domain.Range{Max: &max}
	}
	return filter
}

func (e *Engine) score(req Request, trail *domain.Trail, now time.Time) domain.RecommendationFactors {
	return domain.RecommendationFactors{
		FitnessMatch:         fitnessMatch(req.User.FitnessLevel, trail.Characteristics.Difficulty),
		PreferenceAlignment:  preferenceAlignment(req, trail),
		SeasonalSuitability:  seasonalSuitability(trail.Features, now.Month()),
		SafetyConsiderations: safetyScore(trail.Safety.RiskLevel),
	}
}

// confidence is the weighted blend of the factor scores. Preference fit
// dominates, safety moderates.
func confidence(f domain.RecommendationFactors) float64 {
	return 0.40*f.PreferenceAlignment +
		0.25*f.FitnessMatch +
		0.20*f.SeasonalSuitability +
		0.15*f.SafetyConsiderations
}

var fitnessRank = map[domain.FitnessLevel]int{
	domain.FitnessBeginner:     0,
	domain.FitnessIntermediate: 1,
	domain.FitnessAdvanced:     2,
	domain.FitnessExpert:       3,
}

var difficultyRank = map[domain.TrailDifficulty]int{
	domain.DifficultyEasy:     0,
	domain.DifficultyModerate: 1,
	domain.DifficultyHard:     2,
	domain.DifficultyExpert:   3,
}

// fitnessMatch rewards trails pitched at or just below the hiker's level
// and penalizes each step of mismatch.
func fitnessMatch(level domain.FitnessLevel, difficulty domain.TrailDifficulty) float64 {
	gap := fitnessRank[level] - difficultyRank[difficulty]
	if gap < 0 {
		gap = -gap
	}
	switch gap {
	case 0:
		return 1.0
	case 1:
		return 0.7
	case 2:
		return 0.4
	default:
		return 0.1
	}
}

func preferenceAlignment(req Request, trail *domain.Trail) float64 {
	checks, hits := 0, 0

	difficulties := req.User.Preferences.Difficulties
	if req.Trip != nil && len(req.Trip.Preferences.Difficulties) > 0 {
		difficulties = req.Trip.Preferences.Difficulties
	}
	if len(difficulties) > 0 {
		checks++
		for _, d := range difficulties {
			if d == trail.Characteristics.Difficulty {
				hits++
				break
			}
		}
	}

	if max := req.User.Preferences.MaxDistance; max > 0 {
		checks++
		if trail.Characteristics.DistanceKm <= max {
			hits++
		}
	}

	if req.Trip != nil && len(req.Trip.Preferences.TrailTypes) > 0 {
		checks++
		for _, t := range req.Trip.Preferences.TrailTypes {
			if t == trail.Characteristics.Type {
				hits++
				break
			}
		}
	}

	if checks == 0 {
		return 0.5
	}
	return float64(hits) / float64(checks)
}

func seasonalSuitability(features domain.TrailFeatures, month time.Month) float64 {
	for _, m := range features.AvoidMonths {
		if time.Month(m) == month {
			return 0.2
		}
	}
	for _, m := range features.BestMonths {
		if time.Month(m) == month {
			return 1.0
		}
	}
	return 0.6
}

// safetyScore maps risk level 1..5 onto [0,1], safest first.
func safetyScore(riskLevel int) float64 {
	if riskLevel < 1 {
		riskLevel = 1
	}
	if riskLevel > 5 {
		riskLevel = 5
	}
	return 1.0 - float64(riskLevel-1)*0.2
}

func (e *Engine) reasoning(req Request, picked []scoredTrail) string {
	names := make([]string, 0, len(picked))
	for _, s := range picked {
		names = append(names, s.trail.Name)
	}
	subject := "your profile"
	if req.Trip != nil {
		subject = fmt.Sprintf("your trip %q", req.Trip.Title)
	}
	return fmt.Sprintf("Selected %d trail(s) for %s based on fitness level %s and your difficulty preferences: %s.",
		len(picked), subject, req.User.FitnessLevel, strings.Join(names, ", "))
}

func averageFactors(picked []scoredTrail) domain.RecommendationFactors {
	if len(picked) == 0 {
		return domain.RecommendationFactors{}
	}
	var sum domain.RecommendationFactors
	for _, s := range picked {
		sum.FitnessMatch += s.factors.FitnessMatch
		sum.PreferenceAlignment += s.factors.PreferenceAlignment
		sum.SeasonalSuitability += s.factors.SeasonalSuitability
		sum.SafetyConsiderations += s.factors.SafetyConsiderations
	}
	n := float64(len(picked))
	return domain.RecommendationFactors{
		FitnessMatch:         sum.FitnessMatch / n,
		PreferenceAlignment:  sum.PreferenceAlignment / n,
		SeasonalSuitability:  sum.SeasonalSuitability / n,
		SafetyConsiderations: sum.SafetyConsiderations / n,
	}
}
