// Package repository provides entity-agnostic CRUD over the document store
// plus the concrete entity repositories built on it.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/trailhead/trailhead/pkg/domain"
	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/store/document"
)

// EntityPtr constrains the pointer type of a persisted entity.
type EntityPtr[T any] interface {
	*T
	domain.Entity
}

// Repository is a generic CRUD repository for one collection. It stamps
// ids and timestamps, classifies store failures, and exposes one-shot and
// cursor-paginated query helpers.
type Repository[T any, PT EntityPtr[T]] struct {
	store      document.Store
	collection string
	logger     logger.Logger
	now        func() time.Time
}

// New creates a repository bound to a collection.
func New[T any, PT EntityPtr[T]](store document.Store, collection string, log logger.Logger) *Repository[T, PT] {
	return &Repository[T, PT]{
		store:      store,
		collection: collection,
		logger:     log.With("collection", collection),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// PageResult is one page of typed results. HasMore is true iff the store
// returned a continuation token.
type PageResult[T any] struct {
	Items             []T
	ContinuationToken string
	HasMore           bool
}

// Create stamps id and timestamps, then inserts. The caller (entity
// repository) must have set the partition key.
func (r *Repository[T, PT]) Create(ctx context.Context, entity PT) error {
	if entity.GetID() == "" {
		entity.SetID(uuid.New().String())
	}
	if entity.GetPartitionKey() == "" {
		return fmt.Errorf("%w: entity is missing its partition key", document.ErrBadRequest)
	}
	entity.StampCreated(r.now())

	doc, err := toDocument(entity)
	if err != nil {
		return fmt.Errorf("create %s: %w", r.collection, err)
	}
	stored, err := r.store.Create(ctx, r.collection, doc)
	if err != nil {
		return fmt.Errorf("create %s: %w", r.collection, err)
	}
	if etag, ok := stored[document.FieldETag].(string); ok {
		entity.SetETag(etag)
	}
	return nil
}

// FindByID returns the entity or nil when absent. Only non-not-found
// failures surface as errors.
func (r *Repository[T, PT]) FindByID(ctx context.Context, id, partitionKey string) (PT, error) {
	doc, err := r.store.Read(ctx, r.collection, id, partitionKey)
	if err != nil {
		if document.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s %s: %w", r.collection, id, err)
	}
	return fromDocument[T, PT](doc)
}

// Update is read-modify-write with mandatory optimistic concurrency: the
// patch is shallow-merged over the stored document and the replace only
// succeeds while the supplied etag is current. Protected fields in the
// patch are ignored.
func (r *Repository[T, PT]) Update(ctx context.Context, id, partitionKey string, patch map[string]interface{}, etag string) (PT, error) {
	if etag == "" {
		return nil, fmt.Errorf("%w: update requires the current etag", document.ErrBadRequest)
	}
	existing, err := r.store.Read(ctx, r.collection, id, partitionKey)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", r.collection, id, err)
	}
	if current, _ := existing[document.FieldETag].(string); current != etag {
		return nil, fmt.Errorf("update %s %s: %w", r.collection, id, document.ErrPreconditionFailed)
	}

	merged := make(document.Document, len(existing)+len(patch))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		if protectedField(k) {
			continue
		}
		merged[k] = v
	}
	merged["updatedAt"] = r.now()

	stored, err := r.store.Replace(ctx, r.collection, id, partitionKey, merged, etag)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", r.collection, id, err)
	}
	return fromDocument[T, PT](stored)
}

// Save replaces the full entity under its current etag and refreshes the
// entity's etag and updatedAt in place.
func (r *Repository[T, PT]) Save(ctx context.Context, entity PT) error {
	etag := entity.GetETag()
	if etag == "" {
		return fmt.Errorf("%w: save requires an entity read from the store", document.ErrBadRequest)
	}
	entity.StampUpdated(r.now())
	doc, err := toDocument(entity)
	if err != nil {
		return fmt.Errorf("save %s %s: %w", r.collection, entity.GetID(), err)
	}
	stored, err := r.store.Replace(ctx, r.collection, entity.GetID(), entity.GetPartitionKey(), doc, etag)
	if err != nil {
		return fmt.Errorf("save %s %s: %w", r.collection, entity.GetID(), err)
	}
	if newTag, ok := stored[document.FieldETag].(string); ok {
		entity.SetETag(newTag)
	}
	return nil
}

// Delete removes the entity. Deleting an absent entity succeeds.
func (r *Repository[T, PT]) Delete(ctx context.Context, id, partitionKey string) error {
	if err := r.store.Delete(ctx, r.collection, id, partitionKey); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.collection, id, err)
	}
	return nil
}

// Exists reports whether the entity is present. Never errors: lookup
// failures read as absent.
func (r *Repository[T, PT]) Exists(ctx context.Context, id, partitionKey string) bool {
	entity, err := r.FindByID(ctx, id, partitionKey)
	if err != nil {
		r.logger.Warn("existence check failed", "id", id, "error", err)
		return false
	}
	return entity != nil
}

// Query drains every page of the query and returns the full result set.
// Intended for result sets known to be small.
func (r *Repository[T, PT]) Query(ctx context.Context, q document.Query, partitionKey string) ([]PT, error) {
	var all []PT
	token := ""
	for {
		page, err := r.store.Query(ctx, r.collection, q, document.QueryOptions{
			PartitionKey:      partitionKey,
			MaxItemCount:      queryPageSize,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", r.collection, err)
		}
		for _, doc := range page.Items {
			entity, err := fromDocument[T, PT](doc)
			if err != nil {
				return nil, fmt.Errorf("query %s: %w", r.collection, err)
			}
			all = append(all, entity)
		}
		if page.ContinuationToken == "" {
			return all, nil
		}
		token = page.ContinuationToken
	}
}

// QueryWithPagination returns a single page and the cursor to resume from.
func (r *Repository[T, PT]) QueryWithPagination(ctx context.Context, q document.Query, pageSize int, continuationToken, partitionKey string) (PageResult[PT], error) {
	if pageSize <= 0 {
		pageSize = queryPageSize
	}
	page, err := r.store.Query(ctx, r.collection, q, document.QueryOptions{
		PartitionKey:      partitionKey,
		MaxItemCount:      pageSize,
		ContinuationToken: continuationToken,
	})
	if err != nil {
		return PageResult[PT]{}, fmt.Errorf("query %s: %w", r.collection, err)
	}
	result := PageResult[PT]{
		ContinuationToken: page.ContinuationToken,
		HasMore:           page.ContinuationToken != "",
	}
	for _, doc := range page.Items {
		entity, err := fromDocument[T, PT](doc)
		if err != nil {
			return PageResult[PT]{}, fmt.Errorf("query %s: %w", r.collection, err)
		}
		result.Items = append(result.Items, entity)
	}
	return result, nil
}

// Count returns the number of entities matching the query conditions.
// Cross-partition unless a partition key is supplied.
func (r *Repository[T, PT]) Count(ctx context.Context, q document.Query, partitionKey string) (int64, error) {
	count, err := r.store.Count(ctx, r.collection, q, partitionKey)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.collection, err)
	}
	return count, nil
}

const queryPageSize = 100

func protectedField(field string) bool {
	switch field {
	case document.FieldID, document.FieldPartitionKey, document.FieldETag, "createdAt", "id":
		return true
	default:
		return false
	}
}

// toDocument converts a typed entity into the store's document shape via a
// bson round trip so field names follow the entity's bson tags.
func toDocument(entity interface{}) (document.Document, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	return document.Document(m), nil
}

func fromDocument[T any, PT EntityPtr[T]](doc document.Document) (PT, error) {
	raw, err := bson.Marshal(bson.M(doc))
	if err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	entity := PT(new(T))
	if err := bson.Unmarshal(raw, entity); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	return entity, nil
}
