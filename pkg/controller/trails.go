package controller

import (
	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/recommend"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/server/router"
	"github.com/trailhead/trailhead/pkg/validation"
)

// TrailController serves the trail catalog: search, detail, curation, and
// ratings.
type TrailController struct {
	trails *repository.TrailRepository
	users  *repository.UserRepository
	engine *recommend.Engine
	logger logger.Logger
}

// NewTrailController creates the trails controller.
func NewTrailController(trails *repository.TrailRepository, users *repository.UserRepository, engine *recommend.Engine, log logger.Logger) *TrailController {
	return &TrailController{trails: trails, users: users, engine: engine, logger: log}
}

// Search runs the composite trail filter with cursor pagination.
func (tc *TrailController) Search(c router.Context) error {
	filter := repository.TrailFilter{
		Region:       c.Query("location"),
		Text:         c.Query("q"),
		MaxRiskLevel: intParam(c, "maxRiskLevel"),
		MinRating:    floatParam(c, "minRating"),
		SortKey:      c.Query("sort"),
	}
	for _, d := range csvParam(c, "difficulty") {
		filter.Difficulties = append(filter.Difficulties, domain.TrailDifficulty(d))
	}
	for _, t := range csvParam(c, "type") {
		filter.TrailTypes = append(filter.TrailTypes, domain.TrailType(t))
	}
	if max := floatParam(c, "maxDistance"); max != nil {
		filter.Distance = &domain.Range{Max: max}
	}
	if min := floatParam(c, "minDistance"); min != nil {
		if filter.Distance == nil {
			filter.Distance = &domain.Range{}
		}
		filter.Distance.Min = min
	}

	page, err := tc.trails.Search(c.Request().Context(), filter, pageSize(c), continuationToken(c))
	if err != nil {
		return Error(c, err)
	}
	return Page(c, page.Items, page.ContinuationToken, page.HasMore)
}

// Get returns one trail. Requires the region query parameter to route the
// point lookup; inactive trails read as absent.
func (tc *TrailController) Get(c router.Context) error {
	region := c.Query("region")
	if region == "" {
		return Error(c, NewValidationError("region query parameter is required", nil))
	}
	trail, err := tc.trails.FindByID(c.Request().Context(), c.Param("id"), region)
	if err != nil {
		return Error(c, err)
	}
	if trail == nil || !trail.IsActive {
		return Error(c, NewNotFoundError("trail not found"))
	}
	return Success(c, trail)
}

// Create adds a trail to the catalog.
func (tc *TrailController) Create(c router.Context) error {
	if caller(c) == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var trail domain.Trail
	if err := c.Bind(&trail); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	trail.IsActive = true
	if err := validation.Validate(&trail); err != nil {
		return Error(c, err)
	}
	if err := tc.trails.Create(c.Request().Context(), &trail); err != nil {
		return Error(c, err)
	}
	tc.logger.Info("trail created", "trail_id", trail.ID, "region", trail.Location.Region)
	return Created(c, &trail)
}

// Update replaces a trail's mutable fields under the supplied etag.
func (tc *TrailController) Update(c router.Context) error {
	if caller(c) == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var incoming domain.Trail
	if err := c.Bind(&incoming); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	etag := etagFrom(c, incoming.ETag)
	if etag == "" {
		return Error(c, NewValidationError("etag is required for updates", nil))
	}
	region := c.Query("region")
	if region == "" {
		region = incoming.Location.Region
	}

	ctx := c.Request().Context()
	trail, err := tc.trails.FindByID(ctx, c.Param("id"), region)
	if err != nil {
		return Error(c, err)
	}
	if trail == nil || !trail.IsActive {
		return Error(c, NewNotFoundError("trail not found"))
	}

	trail.Name = incoming.Name
	trail.Description = incoming.Description
	trail.Characteristics = incoming.Characteristics
	trail.Features = incoming.Features
	trail.Safety = incoming.Safety
	trail.Amenities = incoming.Amenities
	if err := validation.Validate(trail); err != nil {
		return Error(c, err)
	}

	trail.ETag = etag
	if err := tc.trails.Save(ctx, trail); err != nil {
		return Error(c, err)
	}
	return Success(c, trail)
}

// Delete soft-deletes a trail. Idempotent.
func (tc *TrailController) Delete(c router.Context) error {
	if caller(c) == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	region := c.Query("region")
	if region == "" {
		return Error(c, NewValidationError("region query parameter is required", nil))
	}
	if err := tc.trails.Deactivate(c.Request().Context(), c.Param("id"), region); err != nil {
		return Error(c, err)
	}
	return Success(c, map[string]string{"status": "deleted"})
}

type rateTrailRequest struct {
	Stars int `json:"stars" validate:"required,min=1,max=5"`
}

// Rate folds one star rating into the trail's running aggregate.
func (tc *TrailController) Rate(c router.Context) error {
	if caller(c) == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	region := c.Query("region")
	if region == "" {
		return Error(c, NewValidationError("region query parameter is required", nil))
	}
	var req rateTrailRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	if err := validation.Validate(&req); err != nil {
		return Error(c, err)
	}

	trail, err := tc.trails.ApplyRating(c.Request().Context(), c.Param("id"), region, req.Stars)
	if err != nil {
		return Error(c, err)
	}
	return Success(c, trail)
}

// Recommendations returns up to five trails matched to the caller by the
// heuristic engine, without persisting a recommendation.
func (tc *TrailController) Recommendations(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	ctx := c.Request().Context()
	user, err := tc.users.Find(ctx, claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if user == nil || !user.IsActive {
		return Error(c, NewNotFoundError("profile not found"))
	}

	req := recommend.Request{User: user, Region: c.Query("location")}
	for _, d := range csvParam(c, "difficulty") {
		req.Difficulties = append(req.Difficulties, domain.TrailDifficulty(d))
	}
	if level := c.Query("experienceLevel"); level != "" {
		user.FitnessLevel = domain.FitnessLevel(level)
	}

	rec, err := tc.engine.Recommend(ctx, req)
	if err != nil {
		return Error(c, NewNotFoundError("no matching trails found"))
	}

	trails := make([]*domain.Trail, 0, len(rec.TrailIDs))
	region := req.Region
	if region == "" {
		region = user.Location.Region
	}
	for _, id := range rec.TrailIDs {
		trail, err := tc.trails.FindByID(ctx, id, region)
		if err != nil || trail == nil {
			// Tolerate trails removed since scoring.
			continue
		}
		trails = append(trails, trail)
	}
	return Success(c, map[string]interface{}{
		"trails":     trails,
		"reasoning":  rec.Reasoning,
		"confidence": rec.Confidence,
	})
}
