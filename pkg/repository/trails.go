package repository

import (
	"context"
	"fmt"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/store/document"
)

const trailsCollection = "trails"

// trailSortKeys is the whitelist of client-facing sort keys. Anything else
// falls back to rating, best first.
var trailSortKeys = map[string]document.Sort{
	"rating":    {Field: "ratings.average", Order: document.SortDesc},
	"distance":  {Field: "characteristics.distanceKm", Order: document.SortAsc},
	"elevation": {Field: "characteristics.elevationGainM", Order: document.SortAsc},
	"name":      {Field: "name", Order: document.SortAsc},
	"newest":    {Field: "createdAt", Order: document.SortDesc},
}

var trailDefaultSort = document.Sort{Field: "ratings.average", Order: document.SortDesc}

// TrailFilter is the structured search filter for trails. Zero-valued
// fields add no conditions.
type TrailFilter struct {
	Region        string
	Text          string
	Difficulties  []domain.TrailDifficulty
	TrailTypes    []domain.TrailType
	Distance      *domain.Range
	Duration      *domain.Range
	ElevationGain *domain.Range
	MaxRiskLevel  *int
	MinRating     *float64
	SortKey       string
}

// query translates the filter into conditions. Region is handled by the
// caller as the partition key, not as a condition.
func (f TrailFilter) query() document.Query {
	q := document.Query{}.Where("isActive", document.OpEqual, true)
	q = withList(q, "characteristics.difficulty", f.Difficulties)
	q = withList(q, "characteristics.type", f.TrailTypes)
	q = withRange(q, "characteristics.distanceKm", f.Distance)
	q = withRange(q, "characteristics.elevationGainM", f.ElevationGain)
	if f.Duration != nil {
		// A trail fits the duration window when its own range lies inside it.
		if f.Duration.Min != nil {
			q = q.Where("characteristics.durationMinHours", document.OpGreaterOrEqual, *f.Duration.Min)
		}
		if f.Duration.Max != nil {
			q = q.Where("characteristics.durationMaxHours", document.OpLessOrEqual, *f.Duration.Max)
		}
	}
	if f.MaxRiskLevel != nil {
		q = q.Where("safety.riskLevel", document.OpLessOrEqual, *f.MaxRiskLevel)
	}
	if f.MinRating != nil {
		q = q.Where("ratings.average", document.OpGreaterOrEqual, *f.MinRating)
	}
	q = withText(q, f.Text, "name", "description", "location.park", "location.country")
	q.Sort = sortFrom(f.SortKey, trailSortKeys, trailDefaultSort)
	return q
}

// TrailRepository persists trails, partitioned by region.
type TrailRepository struct {
	*Repository[domain.Trail, *domain.Trail]
}

// NewTrailRepository creates the trails repository.
func NewTrailRepository(store document.Store, log logger.Logger) *TrailRepository {
	return &TrailRepository{New[domain.Trail, *domain.Trail](store, trailsCollection, log)}
}

// Create inserts a trail into its region partition.
func (r *TrailRepository) Create(ctx context.Context, trail *domain.Trail) error {
	trail.PartitionKey = trail.Location.Region
	return r.Repository.Create(ctx, trail)
}

// Search runs the composite filter with cursor pagination. When the filter
// names a region the query is routed to that partition; otherwise it fans
// out.
func (r *TrailRepository) Search(ctx context.Context, filter TrailFilter, pageSize int, token string) (PageResult[*domain.Trail], error) {
	return r.QueryWithPagination(ctx, filter.query(), pageSize, token, filter.Region)
}

// FindByRegion pages through a region's active trails, best rated first.
func (r *TrailRepository) FindByRegion(ctx context.Context, region string, pageSize int, token string) (PageResult[*domain.Trail], error) {
	q := document.Query{}.Where("isActive", document.OpEqual, true)
	q.Sort = trailDefaultSort
	return r.QueryWithPagination(ctx, q, pageSize, token, region)
}

// FindByDifficulty pages through active trails at the given difficulties,
// cross-partition.
func (r *TrailRepository) FindByDifficulty(ctx context.Context, difficulties []domain.TrailDifficulty, pageSize int, token string) (PageResult[*domain.Trail], error) {
	q := document.Query{}.Where("isActive", document.OpEqual, true)
	q = withList(q, "characteristics.difficulty", difficulties)
	q.Sort = trailDefaultSort
	return r.QueryWithPagination(ctx, q, pageSize, token, "")
}

// ApplyRating folds one star rating (1..5) into the trail's running
// aggregate and saves under the trail's current etag.
func (r *TrailRepository) ApplyRating(ctx context.Context, id, region string, stars int) (*domain.Trail, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", document.ErrBadRequest)
	}
	trail, err := r.FindByID(ctx, id, region)
	if err != nil {
		return nil, err
	}
	if trail == nil {
		return nil, fmt.Errorf("%w: trail %s in region %s", document.ErrNotFound, id, region)
	}
	trail.Ratings.Apply(stars)
	if err := r.Save(ctx, trail); err != nil {
		return nil, err
	}
	return trail, nil
}

// AverageElevationGainByRegion loads every active trail in the region and
// reduces client-side. Fine at catalog scale; do not point this at a large
// collection expecting the store to aggregate.
func (r *TrailRepository) AverageElevationGainByRegion(ctx context.Context, region string) (float64, error) {
	q := document.Query{}.Where("isActive", document.OpEqual, true)
	trails, err := r.Query(ctx, q, region)
	if err != nil {
		return 0, err
	}
	if len(trails) == 0 {
		return 0, nil
	}
	var total float64
	for _, trail := range trails {
		total += trail.Characteristics.ElevationGainM
	}
	return total / float64(len(trails)), nil
}

// Deactivate soft-deletes a trail. Deactivating an absent trail is a no-op.
func (r *TrailRepository) Deactivate(ctx context.Context, id, region string) error {
	trail, err := r.FindByID(ctx, id, region)
	if err != nil || trail == nil {
		return err
	}
	trail.IsActive = false
	return r.Save(ctx, trail)
}
