package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/store/document"
)

const usersCollection = "users"

// UserRepository persists user profiles. Profiles partition by their own
// id, so every point lookup stays inside one partition.
type UserRepository struct {
	*Repository[domain.UserProfile, *domain.UserProfile]
}

// NewUserRepository creates the users repository.
func NewUserRepository(store document.Store, log logger.Logger) *UserRepository {
	return &UserRepository{New[domain.UserProfile, *domain.UserProfile](store, usersCollection, log)}
}

// Create inserts a new profile. Email is normalized to lower case so
// lookups are case-insensitive, and new profiles start active.
func (r *UserRepository) Create(ctx context.Context, user *domain.UserProfile) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.PartitionKey = user.ID
	user.Email = strings.ToLower(user.Email)
	user.IsActive = true
	return r.Repository.Create(ctx, user)
}

// Find returns the profile by id, or nil when absent.
func (r *UserRepository) Find(ctx context.Context, id string) (*domain.UserProfile, error) {
	return r.FindByID(ctx, id, id)
}

// FindByEmail returns the active profile with the given email, or nil.
// Cross-partition: email is not the partition key.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	q := document.Query{}.
		Where("email", document.OpEqual, strings.ToLower(email)).
		Where("isActive", document.OpEqual, true)
	matches, err := r.Query(ctx, q, "")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// FindByFitnessLevel pages through active profiles at one fitness level,
// newest first.
func (r *UserRepository) FindByFitnessLevel(ctx context.Context, level domain.FitnessLevel, pageSize int, token string) (PageResult[*domain.UserProfile], error) {
	q := document.Query{}.
		Where("isActive", document.OpEqual, true).
		Where("fitnessLevel", document.OpEqual, string(level)).
		OrderBy("createdAt", document.SortDesc)
	return r.QueryWithPagination(ctx, q, pageSize, token, "")
}

// Deactivate soft-deletes a profile. Deactivating an absent profile is a
// no-op.
func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	user, err := r.Find(ctx, id)
	if err != nil || user == nil {
		return err
	}
	user.IsActive = false
	return r.Save(ctx, user)
}
