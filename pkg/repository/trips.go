package repository

import (
	"context"
	"time"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/store/document"
)

const tripsCollection = "trips"

var tripSortKeys = map[string]document.Sort{
	"start":  {Field: "dates.start", Order: document.SortAsc},
	"newest": {Field: "createdAt", Order: document.SortDesc},
	"title":  {Field: "title", Order: document.SortAsc},
}

var tripDefaultSort = document.Sort{Field: "createdAt", Order: document.SortDesc}

// TripFilter narrows a user's trip listing. Zero-valued fields add no
// conditions.
type TripFilter struct {
	Statuses    []domain.TripStatus
	StartAfter  *time.Time
	StartBefore *time.Time
	Text        string
	SortKey     string
}

func (f TripFilter) query() document.Query {
	q := document.Query{}
	q = withList(q, "status", f.Statuses)
	if f.StartAfter != nil {
		q = q.Where("dates.start", document.OpGreaterOrEqual, *f.StartAfter)
	}
	if f.StartBefore != nil {
		q = q.Where("dates.start", document.OpLessOrEqual, *f.StartBefore)
	}
	q = withText(q, f.Text, "title", "description", "location.region")
	q.Sort = sortFrom(f.SortKey, tripSortKeys, tripDefaultSort)
	return q
}

// TripRepository persists trip plans, partitioned by the owning user so a
// user's trips are always a single-partition query.
type TripRepository struct {
	*Repository[domain.TripPlan, *domain.TripPlan]
}

// NewTripRepository creates the trips repository.
func NewTripRepository(store document.Store, log logger.Logger) *TripRepository {
	return &TripRepository{New[domain.TripPlan, *domain.TripPlan](store, tripsCollection, log)}
}

// Create inserts a trip into the owner's partition. New trips start in
// planning unless a status was set explicitly.
func (r *TripRepository) Create(ctx context.Context, trip *domain.TripPlan) error {
	trip.PartitionKey = trip.UserID
	if trip.Status == "" {
		trip.Status = domain.TripPlanning
	}
	return r.Repository.Create(ctx, trip)
}

// FindForUser pages through a user's trips under the given filter.
func (r *TripRepository) FindForUser(ctx context.Context, userID string, filter TripFilter, pageSize int, token string) (PageResult[*domain.TripPlan], error) {
	return r.QueryWithPagination(ctx, filter.query(), pageSize, token, userID)
}

// FindByStatus pages through a user's trips in one status.
func (r *TripRepository) FindByStatus(ctx context.Context, userID string, status domain.TripStatus, pageSize int, token string) (PageResult[*domain.TripPlan], error) {
	return r.FindForUser(ctx, userID, TripFilter{Statuses: []domain.TripStatus{status}}, pageSize, token)
}

// FindByDateRange returns a user's trips whose start date falls inside the
// inclusive window.
func (r *TripRepository) FindByDateRange(ctx context.Context, userID string, from, to time.Time, pageSize int, token string) (PageResult[*domain.TripPlan], error) {
	filter := TripFilter{StartAfter: &from, StartBefore: &to, SortKey: "start"}
	return r.FindForUser(ctx, userID, filter, pageSize, token)
}

// CountByStatus loads all of a user's trips and reduces client-side. Fine
// for per-user volumes; not a substitute for server-side aggregation.
func (r *TripRepository) CountByStatus(ctx context.Context, userID string) (map[domain.TripStatus]int64, error) {
	trips, err := r.Query(ctx, document.Query{}, userID)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.TripStatus]int64)
	for _, trip := range trips {
		counts[trip.Status]++
	}
	return counts, nil
}
