// Package mongodb implements the document.Store contract on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/google/uuid"

	"github.com/trailhead/trailhead/pkg/observability/logger"
	"github.com/trailhead/trailhead/pkg/observability/metrics"
	"github.com/trailhead/trailhead/pkg/observability/tracing"
	"github.com/trailhead/trailhead/pkg/store/document"
)

// Store provides MongoDB-backed document storage.
type Store struct {
	client   *mongo.Client
	database string
	logger   logger.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// Config holds MongoDB store configuration.
type Config struct {
	URL              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// NewStore connects to MongoDB and verifies connectivity via ping. This is
// the explicit startup phase: it runs synchronously before the server
// accepts requests, so there is no lazy-init race at request time.
func NewStore(cfg Config, log logger.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mongodb URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("MongoDB connection established", "database", cfg.Database)
	return &Store{
		client:   client,
		database: cfg.Database,
		logger:   log,
		timeout:  cfg.OperationTimeout,
	}, nil
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.client.Database(s.database).Collection(name)
}

// Ping verifies connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return fmt.Errorf("mongodb store is closed")
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// HealthCheck runs a bounded ping for readiness probes.
func (s *Store) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.Ping(hcCtx); err != nil {
		s.logger.Error("MongoDB health check failed", "error", err)
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}
	return nil
}

// Create inserts a document, assigning a fresh etag.
func (s *Store) Create(ctx context.Context, collection string, doc document.Document) (document.Document, error) {
	opCtx, cancel := s.withOperationTimeout(ctx)
	defer cancel()
	opCtx, span := tracing.StartDatabaseSpan(opCtx, tracing.SpanOperationDBInsert,
		tracing.WithDBSystem("mongodb"), tracing.WithDBTable(collection))
	defer span.End()
	start := time.Now()

	stored := cloneDoc(doc)
	stored[document.FieldETag] = uuid.New().String()
	_, err := s.collection(collection).InsertOne(opCtx, bson.M(stored))
	metrics.RecordStoreOperation("create", collection, time.Since(start), err)
	if err != nil {
		tracing.RecordError(span, err)
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", document.ErrConflict, err)
		}
		return nil, classify(err)
	}
	tracing.RecordSuccess(span)
	return stored, nil
}

// Read returns a document by (id, partition key) point lookup.
func (s *Store) Read(ctx context.Context, collection, id, partitionKey string) (document.Document, error) {
	opCtx, cancel := s.withOperationTimeout(ctx)
	defer cancel()
	opCtx, span := tracing.StartDatabaseSpan(opCtx, tracing.SpanOperationDBQuery,
		tracing.WithDBSystem("mongodb"), tracing.WithDBTable(collection))
	defer span.End()
	start := time.Now()

	var out bson.M
	err := s.collection(collection).FindOne(opCtx, pointFilter(id, partitionKey)).Decode(&out)
	metrics.RecordStoreOperation("read", collection, time.Since(start), err)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: id %q in partition %q", document.ErrNotFound, id, partitionKey)
		}
		tracing.RecordError(span, err)
		return nil, classify(err)
	}
	tracing.RecordSuccess(span)
	return document.Document(out), nil
}

// Replace overwrites a document, honoring the optional concurrency tag.
func (s *Store) Replace(ctx context.Context, collection, id, partitionKey string, doc document.Document, ifMatch string) (document.Document, error) {
	opCtx, cancel := s.withOperationTimeout(ctx)
	defer cancel()
	opCtx, span := tracing.StartDatabaseSpan(opCtx, tracing.SpanOperationDBUpdate,
		tracing.WithDBSystem("mongodb"), tracing.WithDBTable(collection))
	defer span.End()
	start := time.Now()

	filter := pointFilter(id, partitionKey)
	if ifMatch != "" {
		filter[document.FieldETag] = ifMatch
	}

	stored := cloneDoc(doc)
	stored[document.FieldID] = id
	stored[document.FieldPartitionKey] = partitionKey
	stored[document.FieldETag] = uuid.New().String()

	result, err := s.collection(collection).ReplaceOne(opCtx, filter, bson.M(stored))
	metrics.RecordStoreOperation("replace", collection, time.Since(start), err)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, classify(err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing document from a stale tag.
		count, countErr := s.collection(collection).CountDocuments(opCtx, pointFilter(id, partitionKey))
		if countErr != nil {
			return nil, classify(countErr)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: id %q in partition %q", document.ErrNotFound, id, partitionKey)
		}
		return nil, fmt.Errorf("%w: id %q", document.ErrPreconditionFailed, id)
	}
	tracing.RecordSuccess(span)
	return stored, nil
}

// Delete removes a document. Absent documents are a no-op success.
func (s *Store) Delete(ctx context.Context, collection, id, partitionKey string) error {
	opCtx, cancel := s.withOperationTimeout(ctx)
	defer cancel()
	opCtx, span := tracing.StartDatabaseSpan(opCtx, tracing.SpanOperationDBDelete,
		tracing.WithDBSystem("mongodb"), tracing.WithDBTable(collection))
	defer span.End()
	start := time.Now()

	_, err := s.collection(collection).DeleteOne(opCtx, pointFilter(id, partitionKey))
	metrics.RecordStoreOperation("delete", collection, time.Since(start), err)
	if err != nil {
		tracing.RecordError(span, err)
		return classify(err)
	}
	tracing.RecordSuccess(span)
	return nil
}

// Query executes a structured query and returns one page plus a
// continuation token when more results exist.
func (s *Store) Query(ctx context.Context, collection string, q document.Query, opts document.QueryOptions) (document.Page, error) {
	opCtx, cancel := s.withOperationTimeout(ctx)
	defer cancel()
	opCtx, span := tracing.StartDatabaseSpan(opCtx, tracing.SpanOperationDBQuery,
		tracing.WithDBSystem("mongodb"), tracing.WithDBTable(collection))
	defer span.End()
	start := time.Now()

	filter, err := compileQuery(q, opts.PartitionKey)
	if err != nil {
		return document.Page{}, err
	}
	if opts.ContinuationToken != "" {
		cursor, err := document.DecodeCursor(opts.ContinuationToken, q.Sort)
		if err != nil {
			return document.Page{}, err
		}
		filter = bson.M{"$and": bson.A{filter, cursorFilter(q.Sort, cursor)}}
	}

	findOpts := options.Find().SetSort(sortSpec(q.Sort))
	limit := opts.MaxItemCount
	if limit > 0 {
		// Fetch one extra row to learn whether another page exists.
		findOpts.SetLimit(int64(limit + 1))
	}

	cur, err := s.collection(collection).Find(opCtx, filter, findOpts)
	if err != nil {
		metrics.RecordStoreOperation("query", collection, time.Since(start), err)
		tracing.RecordError(span, err)
		return document.Page{}, classify(err)
	}
	var rows []bson.M
	err = cur.All(opCtx, &rows)
	metrics.RecordStoreOperation("query", collection, time.Since(start), err)
	if err != nil {
		tracing.RecordError(span, err)
		return document.Page{}, classify(err)
	}

	page := document.Page{}
	hasMore := limit > 0 && len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		page.Items = append(page.Items, document.Document(row))
	}
	page.RequestCharge = float64(len(page.Items))
	if hasMore {
		last := page.Items[len(page.Items)-1]
		cursor := document.Cursor{
			SortField: q.Sort.Field,
			SortOrder: q.Sort.Order,
			LastID:    docID(last),
		}
		if q.Sort.Field != "" {
			v, _ := document.Lookup(last, q.Sort.Field)
			cursor.SortValue = document.Normalize(v)
		}
		page.ContinuationToken = document.EncodeCursor(cursor)
	}
	tracing.RecordSuccess(span)
	return page, nil
}

// Count returns the number of matching documents.
func (s *Store) Count(ctx context.Context, collection string, q document.Query, partitionKey string) (int64, error) {
	opCtx, cancel := s.withOperationTimeout(ctx)
	defer cancel()
	start := time.Now()

	filter, err := compileQuery(q, partitionKey)
	if err != nil {
		return 0, err
	}
	count, err := s.collection(collection).CountDocuments(opCtx, filter)
	metrics.RecordStoreOperation("count", collection, time.Since(start), err)
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

func (s *Store) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func pointFilter(id, partitionKey string) bson.M {
	return bson.M{
		document.FieldID:           id,
		document.FieldPartitionKey: partitionKey,
	}
}

func docID(doc document.Document) string {
	id, _ := doc[document.FieldID].(string)
	return id
}

func cloneDoc(doc document.Document) document.Document {
	out := make(document.Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// compileQuery translates the structured query into a bson filter. Values
// are always passed as bson operands, never interpolated into strings.
func compileQuery(q document.Query, partitionKey string) (bson.M, error) {
	var clauses bson.A
	if partitionKey != "" {
		clauses = append(clauses, bson.M{document.FieldPartitionKey: partitionKey})
	}
	for _, cond := range q.Conditions {
		clause, err := compileCondition(cond)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	for _, group := range q.Groups {
		var alternatives bson.A
		for _, cond := range group.Any {
			clause, err := compileCondition(cond)
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, clause)
		}
		clauses = append(clauses, bson.M{"$or": alternatives})
	}
	switch len(clauses) {
	case 0:
		return bson.M{}, nil
	case 1:
		return clauses[0].(bson.M), nil
	default:
		return bson.M{"$and": clauses}, nil
	}
}

func compileCondition(cond document.Condition) (bson.M, error) {
	if cond.Field == "" {
		return nil, fmt.Errorf("%w: condition without field", document.ErrBadRequest)
	}
	switch cond.Op {
	case document.OpEqual:
		return bson.M{cond.Field: bson.M{"$eq": cond.Value}}, nil
	case document.OpNotEqual:
		return bson.M{cond.Field: bson.M{"$ne": cond.Value}}, nil
	case document.OpGreater:
		return bson.M{cond.Field: bson.M{"$gt": cond.Value}}, nil
	case document.OpGreaterOrEqual:
		return bson.M{cond.Field: bson.M{"$gte": cond.Value}}, nil
	case document.OpLess:
		return bson.M{cond.Field: bson.M{"$lt": cond.Value}}, nil
	case document.OpLessOrEqual:
		return bson.M{cond.Field: bson.M{"$lte": cond.Value}}, nil
	case document.OpIn:
		members, ok := document.ToSlice(cond.Value)
		if !ok {
			return nil, fmt.Errorf("%w: IN condition on %q requires a slice value", document.ErrBadRequest, cond.Field)
		}
		return bson.M{cond.Field: bson.M{"$in": members}}, nil
	case document.OpContains:
		needle, ok := cond.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: CONTAINS condition on %q requires a string value", document.ErrBadRequest, cond.Field)
		}
		return bson.M{cond.Field: bson.M{"$regex": regexp.QuoteMeta(needle), "$options": "i"}}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", document.ErrBadRequest, cond.Op)
	}
}

// cursorFilter builds the range predicate that resumes a query strictly
// after the cursor position under (sort value, id) ordering.
func cursorFilter(sort document.Sort, cursor document.Cursor) bson.M {
	idOp, valueOp := "$gt", "$gt"
	if sort.Order == document.SortDesc {
		idOp, valueOp = "$lt", "$lt"
	}
	if sort.Field == "" {
		return bson.M{document.FieldID: bson.M{idOp: cursor.LastID}}
	}
	return bson.M{"$or": bson.A{
		bson.M{sort.Field: bson.M{valueOp: cursor.SortValue}},
		bson.M{
			sort.Field:       bson.M{"$eq": cursor.SortValue},
			document.FieldID: bson.M{idOp: cursor.LastID},
		},
	}}
}

func sortSpec(sort document.Sort) bson.D {
	dir := 1
	if sort.Order == document.SortDesc {
		dir = -1
	}
	if sort.Field == "" {
		return bson.D{{Key: document.FieldID, Value: dir}}
	}
	return bson.D{{Key: sort.Field, Value: dir}, {Key: document.FieldID, Value: dir}}
}

// classify maps driver failures onto the store error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// 16500 is the server's request-rate-too-large code; surfaced so
		// callers can apply their own backoff policy.
		if cmdErr.Code == 16500 {
			return fmt.Errorf("%w: %v", document.ErrThrottled, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("store operation timed out: %w", err)
	}
	return err
}
