package controller

import (
	"time"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/repository"
	"github.com/trailhead/trailhead/pkg/server/router"
	"github.com/trailhead/trailhead/pkg/validation"
)

// TripController serves trip plan CRUD, always scoped to the caller's own
// partition. Ownership is enforced here: a trip that exists but belongs to
// someone else reads as not found.
type TripController struct {
	trips  *repository.TripRepository
	logger logger.Logger
}

// NewTripController creates the trips controller.
func NewTripController(trips *repository.TripRepository, log logger.Logger) *TripController {
	return &TripController{trips: trips, logger: log}
}

// List pages through the caller's trips. Supports status, date window, and
// free-text filters.
func (tc *TripController) List(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	filter := repository.TripFilter{
		Text:    c.Query("q"),
		SortKey: c.Query("sort"),
	}
	for _, s := range csvParam(c, "status") {
		filter.Statuses = append(filter.Statuses, domain.TripStatus(s))
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.StartAfter = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.StartBefore = &t
		}
	}

	page, err := tc.trips.FindForUser(c.Request().Context(), claims.Subject, filter, pageSize(c), continuationToken(c))
	if err != nil {
		return Error(c, err)
	}
	return Page(c, page.Items, page.ContinuationToken, page.HasMore)
}

// Get returns one of the caller's trips.
func (tc *TripController) Get(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	trip, err := tc.trips.FindByID(c.Request().Context(), c.Param("id"), claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if trip == nil {
		return Error(c, NewNotFoundError("trip not found"))
	}
	return Success(c, trip)
}

// Create adds a trip owned by the caller.
func (tc *TripController) Create(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var trip domain.TripPlan
	if err := c.Bind(&trip); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	trip.UserID = claims.Subject
	if trip.Status == "" {
		trip.Status = domain.TripPlanning
	}
	if err := validation.Validate(&trip); err != nil {
		return Error(c, err)
	}
	if err := tc.trips.Create(c.Request().Context(), &trip); err != nil {
		return Error(c, err)
	}
	tc.logger.Info("trip created", "trip_id", trip.ID, "user_id", claims.Subject)
	return Created(c, &trip)
}

// Update replaces a trip's mutable fields under the supplied etag. Status
// changes go through UpdateStatus, not here.
func (tc *TripController) Update(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var incoming domain.TripPlan
	if err := c.Bind(&incoming); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	etag := etagFrom(c, incoming.ETag)
	if etag == "" {
		return Error(c, NewValidationError("etag is required for updates", nil))
	}

	ctx := c.Request().Context()
	trip, err := tc.trips.FindByID(ctx, c.Param("id"), claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if trip == nil {
		return Error(c, NewNotFoundError("trip not found"))
	}
	if incoming.Status != "" && incoming.Status != trip.Status {
		return Error(c, NewValidationError("status cannot be changed here, use the status endpoint", nil))
	}

	trip.Title = incoming.Title
	trip.Description = incoming.Description
	trip.Dates = incoming.Dates
	trip.Location = incoming.Location
	trip.Participants = incoming.Participants
	trip.Preferences = incoming.Preferences
	trip.SelectedTrails = incoming.SelectedTrails
	trip.Equipment = incoming.Equipment
	trip.Budget = incoming.Budget
	if err := validation.Validate(trip); err != nil {
		return Error(c, err)
	}

	trip.ETag = etag
	if err := tc.trips.Save(ctx, trip); err != nil {
		return Error(c, err)
	}
	return Success(c, trip)
}

type updateStatusRequest struct {
	Status domain.TripStatus `json:"status" validate:"required,oneof=planning confirmed completed cancelled"`
	ETag   string            `json:"etag"`
}

// UpdateStatus moves a trip through its lifecycle. Transitions outside
// planning -> confirmed -> completed (with cancelled reachable from
// planning or confirmed) are rejected.
func (tc *TripController) UpdateStatus(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, NewValidationError("invalid request body", nil))
	}
	if err := validation.Validate(&req); err != nil {
		return Error(c, err)
	}
	etag := etagFrom(c, req.ETag)
	if etag == "" {
		return Error(c, NewValidationError("etag is required for updates", nil))
	}

	ctx := c.Request().Context()
	trip, err := tc.trips.FindByID(ctx, c.Param("id"), claims.Subject)
	if err != nil {
		return Error(c, err)
	}
	if trip == nil {
		return Error(c, NewNotFoundError("trip not found"))
	}
	if !domain.CanTransition(trip.Status, req.Status) {
		return Error(c, NewValidationError(
			"invalid status transition",
			map[string]interface{}{"from": trip.Status, "to": req.Status},
		))
	}

	trip.Status = req.Status
	trip.ETag = etag
	if err := tc.trips.Save(ctx, trip); err != nil {
		return Error(c, err)
	}
	tc.logger.Info("trip status changed", "trip_id", trip.ID, "status", trip.Status)
	return Success(c, trip)
}

// Delete removes one of the caller's trips. Idempotent.
func (tc *TripController) Delete(c router.Context) error {
	claims := caller(c)
	if claims == nil {
		return Error(c, NewUnauthorizedError("authentication required"))
	}
	if err := tc.trips.Delete(c.Request().Context(), c.Param("id"), claims.Subject); err != nil {
		return Error(c, err)
	}
	return Success(c, map[string]string{"status": "deleted"})
}
