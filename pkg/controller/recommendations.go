package controller

import (
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/recommend"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/server/router"
	"github.com/trailhead/trailhead/pkg/validation"
)

// RecommendationController serves stored recommendations for the caller.
type RecommendationController struct {
	recommendations *repository.RecommendationRepository
	trips           *repository.TripRepository
	users           *repository.UserRepository
	engine          *recommend.Engine
	logger          logger.Logger
	now             nowFunc
}

// NewRecommendationController creates the recommendations controller.
func NewRecommendationController(
	recs *repository.RecommendationRepository,
	trips *repository.TripRepository,
	users *repository.UserRepository,
	engine *recommend.Engine,
	log logger.Logger,
) *RecommendationController {
	return &RecommendationController{
		recommendations: recs,
		trips:           trips,
		users:           users,
		engine:          engine,
		logger:          log,
		now:             defaultNow,
	}
}

// List pages through the caller's unexpired recommendations, most
// confident first. An optional minConfidence filters low scores out.
func (rc *RecommendationController) List(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	ctx := c.Request().Context()

	if min := floatParam(c, "minConfidence"); min != nil {
		result, err := rc.recommendations.FindByMinConfidence(ctx, claims.Subject, *min, rc.now(), pageSize(c), continuationToken(c))
		if err != nil {
			return Error(c, err)
		}
		return Page(c, result.Items, result.ContinuationToken, result.HasMore)
	}
	result, err := rc.recommendations.FindActive(ctx, claims.Subject, rc.now(), pageSize(c), continuationToken(c))
	if err != nil {
		return Error(c, err)
	}
	return Page(c, result.Items, result.ContinuationToken, result.HasMore)
}

type generateRequest struct {
	TripID string `json:"tripId"`
	Region string `json:"region"`
}

// Generate scores trails for the caller (optionally for one trip), stores
// the recommendation, and returns it.
func (rc *RecommendationController) Generate(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}

	ctx := c.Request().Context()
	user, err := rc.users.Find(ctx, claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if user == nil || !user.IsActive {
		return Error(c, NewNotFoundError("profile not found"))
	}

	engineReq := recommend.Request{User: user, Region: req.Region}
	if req.TripID != "" {
		trip, err := rc.trips.FindByID(ctx, req.TripID, claims.Subject)
		if err != nil {
			return Error(c, err)
		}
		if trip == nil {
			return Error(c, NewNotFoundError("trip not found"))
		}
		engineReq.Trip = trip
	}

	rec, err := rc.engine.Recommend(ctx, engineReq)
	if err != nil {
		return Error(c, NewNotFoundError("no matching trails found"))
	}
	if err := validation.Validate(rec); err != nil {
		return Error(c, err)
	}
	if err := rc.recommendations.Create(ctx, rec); err != nil {
		return Error(c, err)
	}
	rc.logger.Info("recommendation generated",
		"recommendation_id", rec.ID, "user_id", claims.Subject, "trails", len(rec.TrailIDs))
	return Created(c, rec)
}

// PurgeExpired deletes the caller's expired recommendations and reports
// how many were removed.
func (rc *RecommendationController) PurgeExpired(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	purged, err := rc.recommendations.PurgeExpired(c.Request().Context(), claims.Subject, rc.now())
	if err != nil {
		return Error(c, err)
	}
	return Success(c, map[string]int{"purged": purged})
}
