package controller

import (
	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/server/router"
	"github.com/trailhead/trailhead/pkg/validation"
)

// UserController serves the authenticated user's profile, preferences, and
// statistics.
type UserController struct {
	users           *repository.UserRepository
	trips           *repository.TripRepository
	recommendations *repository.RecommendationRepository
	logger          logger.Logger
	now             nowFunc
}

// NewUserController creates the users controller.
func NewUserController(users *repository.UserRepository, trips *repository.TripRepository, recs *repository.RecommendationRepository, log logger.Logger) *UserController {
	return &UserController{
		users:           users,
		trips:           trips,
		recommendations: recs,
		logger:          log,
		now:             defaultNow,
	}
}

// GetProfile returns the caller's profile.
func (uc *UserController) GetProfile(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	user, err := uc.users.Find(c.Request().Context(), claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if user == nil || !user.IsActive {
		return Error(c, NewNotFoundError("profile not found"))
	}
	return Success(c, user)
}

type updateProfileRequest struct {
	DisplayName  string               `json:"displayName"`
	FitnessLevel domain.FitnessLevel  `json:"fitnessLevel"`
	Location     *domain.UserLocation `json:"location"`
	ETag         string               `json:"etag"`
}

// UpdateProfile updates mutable profile fields under the supplied etag.
func (uc *UserController) UpdateProfile(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	etag := etagFrom(c, req.ETag)
	if etag == "" {
		return Error(c, NewValidationError("etag is required for updates", nil))
	}

	ctx := c.Request().Context()
	user, err := uc.users.Find(ctx, claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if user == nil || !user.IsActive {
		return Error(c, NewNotFoundError("profile not found"))
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.FitnessLevel != "" {
		user.FitnessLevel = req.FitnessLevel
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if err := validation.Validate(user); err != nil {
		return Error(c, err)
	}

	user.ETag = etag
	if err := uc.users.Save(ctx, user); err != nil {
		return Error(c, err)
	}
	return Success(c, user)
}

type updatePreferencesRequest struct {
	Preferences domain.UserPreferences `json:"preferences"`
	ETag        string                 `json:"etag"`
}

// UpdatePreferences replaces the caller's trail preferences.
func (uc *UserController) UpdatePreferences(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var req updatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	etag := etagFrom(c, req.ETag)
	if etag == "" {
		return Error(c, NewValidationError("etag is required for updates", nil))
	}

	ctx := c.Request().Context()
	user, err := uc.users.Find(ctx, claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if user == nil || !user.IsActive {
		return Error(c, NewNotFoundError("profile not found"))
	}

	user.Preferences = req.Preferences
	if err := validation.Validate(user); err != nil {
		return Error(c, err)
	}

	user.ETag = etag
	if err := uc.users.Save(ctx, user); err != nil {
		return Error(c, err)
	}
	return Success(c, user)
}

// GetStatistics summarizes the caller's trips and active recommendations.
// Trip counts are reduced client-side from the user's partition; the
// recommendation count is a store count query.
func (uc *UserController) GetStatistics(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	ctx := c.Request().Context()

	byStatus, err := uc.trips.CountByStatus(ctx, claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	stats := domain.UserStatistics{
		TripsByStatus: make(map[string]int64, len(byStatus)),
	}
	for status, count := range byStatus {
		stats.TripsByStatus[string(status)] = count
		stats.TotalTrips += count
	}

	activeRecs, err := uc.recommendations.CountActive(ctx, claims.Subject, uc.now())
	if err != nil {
		return Error(c, err)
	}
	stats.ActiveRecCount = activeRecs

	return Success(c, stats)
}
