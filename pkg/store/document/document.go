// Package document defines the backend-neutral contract for the partitioned
// document store: whole-record documents addressed by (id, partition key),
// parameterized structured queries, and cursor-based pagination.
package document

import "context"

// Document is a schema-flexible record as stored. Repositories convert
// between typed entities and this shape.
type Document map[string]interface{}

// Reserved document fields managed by the store layer.
const (
	FieldID           = "_id"
	FieldPartitionKey = "partitionKey"
	FieldETag         = "etag"
)

// Page is one page of query results. ContinuationToken is present iff more
// results exist. RequestCharge surfaces the backend's cost metric for the
// call; callers may log it but nothing acts on it.
type Page struct {
	Items             []Document
	ContinuationToken string
	RequestCharge     float64
}

// QueryOptions control query execution.
type QueryOptions struct {
	// PartitionKey restricts the query to a single partition when set;
	// empty means cross-partition.
	PartitionKey string
	// MaxItemCount caps the page size. Zero means backend default.
	MaxItemCount int
	// ContinuationToken resumes a previous query. Must have been produced
	// by the same query shape (same sort), otherwise the store rejects it.
	ContinuationToken string
}

// Store is the only contract through which the application talks to the
// physical database. Implementations: mongodb (production), memory (tests).
type Store interface {
	// Create inserts a document. Fails with ErrConflict when the id already
	// exists in the partition. Returns the stored document including
	// store-assigned fields (etag).
	Create(ctx context.Context, collection string, doc Document) (Document, error)

	// Read returns a document by point lookup, or ErrNotFound.
	Read(ctx context.Context, collection, id, partitionKey string) (Document, error)

	// Replace overwrites the full document. When ifMatch is non-empty the
	// write only succeeds if the stored etag matches; a stale tag yields
	// ErrPreconditionFailed. Returns the stored document with its new etag.
	Replace(ctx context.Context, collection, id, partitionKey string, doc Document, ifMatch string) (Document, error)

	// Delete removes a document. Deleting an absent document is a no-op.
	Delete(ctx context.Context, collection, id, partitionKey string) error

	// Query executes a parameterized query and returns one page.
	Query(ctx context.Context, collection string, q Query, opts QueryOptions) (Page, error)

	// Count returns the number of documents matching the query conditions.
	// Cross-partition unless partitionKey is set.
	Count(ctx context.Context, collection string, q Query, partitionKey string) (int64, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
