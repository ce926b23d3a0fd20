package repository

import (
	"context"
	"time"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/store/document"
)

const recommendationsCollection = "recommendations"

var recommendationDefaultSort = document.Sort{Field: "confidence", Order: document.SortDesc}

// RecommendationRepository persists trail recommendations, partitioned by
// the target user. Recommendations are cache-like: readers filter on
// expiry rather than relying on the store to evict.
type RecommendationRepository struct {
	*Repository[domain.Recommendation, *domain.Recommendation]
}

// NewRecommendationRepository creates the recommendations repository.
func NewRecommendationRepository(store document.Store, log logger.Logger) *RecommendationRepository {
	return &RecommendationRepository{New[domain.Recommendation, *domain.Recommendation](store, recommendationsCollection, log)}
}

// Create inserts a recommendation into the user's partition.
func (r *RecommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	rec.PartitionKey = rec.UserID
	return r.Repository.Create(ctx, rec)
}

// FindActive pages through a user's unexpired recommendations, most
// confident first.
func (r *RecommendationRepository) FindActive(ctx context.Context, userID string, now time.Time, pageSize int, token string) (PageResult[*domain.Recommendation], error) {
	q := document.Query{}.Where("expiresAt", document.OpGreater, now)
	q.Sort = recommendationDefaultSort
	return r.QueryWithPagination(ctx, q, pageSize, token, userID)
}

// FindByMinConfidence pages through a user's unexpired recommendations at
// or above a confidence floor.
func (r *RecommendationRepository) FindByMinConfidence(ctx context.Context, userID string, min float64, now time.Time, pageSize int, token string) (PageResult[*domain.Recommendation], error) {
	q := document.Query{}.
		Where("expiresAt", document.OpGreater, now).
		Where("confidence", document.OpGreaterOrEqual, min)
	q.Sort = recommendationDefaultSort
	return r.QueryWithPagination(ctx, q, pageSize, token, userID)
}

// CountActive returns the number of a user's unexpired recommendations.
func (r *RecommendationRepository) CountActive(ctx context.Context, userID string, now time.Time) (int64, error) {
	q := document.Query{}.Where("expiresAt", document.OpGreater, now)
	return r.Count(ctx, q, userID)
}

// FindForTrip returns the unexpired recommendations tied to one trip.
func (r *RecommendationRepository) FindForTrip(ctx context.Context, userID, tripID string, now time.Time) ([]*domain.Recommendation, error) {
	q := document.Query{}.
		Where("tripId", document.OpEqual, tripID).
		Where("expiresAt", document.OpGreater, now)
	q.Sort = recommendationDefaultSort
	return r.Query(ctx, q, userID)
}

// PurgeExpired deletes a user's expired recommendations and returns how
// many were removed. Individual delete failures are logged and skipped;
// the count reports successes only.
func (r *RecommendationRepository) PurgeExpired(ctx context.Context, userID string, now time.Time) (int, error) {
	q := document.Query{}.Where("expiresAt", document.OpLessOrEqual, now)
	expired, err := r.Query(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, rec := range expired {
		if err := r.Delete(ctx, rec.ID, userID); err != nil {
			r.logger.Warn("failed to purge expired recommendation", "id", rec.ID, "error", err)
			continue
		}
		purged++
	}
	return purged, nil
}
