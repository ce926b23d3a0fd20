// Package memory provides an in-memory document.Store used by tests and
// local development. It implements the full contract, including etag
// rotation and cursor pagination, against process-local state.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/trailhead/trailhead/pkg/store/document"
)

// Store is an in-memory document store. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]document.Document
	closed      bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{collections: make(map[string]map[string]document.Document)}
}

func key(id, partitionKey string) string { return partitionKey + "\x00" + id }

// Create inserts a document, assigning a fresh etag.
func (s *Store) Create(ctx context.Context, collection string, doc document.Document) (document.Document, error) {
	if err := s.barrier(ctx); err != nil {
		return nil, err
	}
	id, pk, err := identity(doc)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]document.Document)
		s.collections[collection] = coll
	}
	if _, exists := coll[key(id, pk)]; exists {
		return nil, fmt.Errorf("%w: id %q in partition %q", document.ErrConflict, id, pk)
	}

	stored := clone(doc)
	stored[document.FieldETag] = uuid.New().String()
	coll[key(id, pk)] = stored
	return clone(stored), nil
}

// Read returns a document by point lookup.
func (s *Store) Read(ctx context.Context, collection, id, partitionKey string) (document.Document, error) {
	if err := s.barrier(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][key(id, partitionKey)]
	if !ok {
		return nil, fmt.Errorf("%w: id %q in partition %q", document.ErrNotFound, id, partitionKey)
	}
	return clone(doc), nil
}

// Replace overwrites a document, honoring the optional concurrency tag.
func (s *Store) Replace(ctx context.Context, collection, id, partitionKey string, doc document.Document, ifMatch string) (document.Document, error) {
	if err := s.barrier(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.collections[collection][key(id, partitionKey)]
	if !ok {
		return nil, fmt.Errorf("%w: id %q in partition %q", document.ErrNotFound, id, partitionKey)
	}
	if ifMatch != "" {
		current, _ := existing[document.FieldETag].(string)
		if current != ifMatch {
			return nil, fmt.Errorf("%w: id %q", document.ErrPreconditionFailed, id)
		}
	}

	stored := clone(doc)
	stored[document.FieldID] = id
	stored[document.FieldPartitionKey] = partitionKey
	stored[document.FieldETag] = uuid.New().String()
	s.collections[collection][key(id, partitionKey)] = stored
	return clone(stored), nil
}

// Delete removes a document. Absent documents are a no-op.
func (s *Store) Delete(ctx context.Context, collection, id, partitionKey string) error {
	if err := s.barrier(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], key(id, partitionKey))
	return nil
}

// Query evaluates the structured query against the collection snapshot.
func (s *Store) Query(ctx context.Context, collection string, q document.Query, opts document.QueryOptions) (document.Page, error) {
	if err := s.barrier(ctx); err != nil {
		return document.Page{}, err
	}

	s.mu.RLock()
	matched := s.matchLocked(collection, q, opts.PartitionKey)
	s.mu.RUnlock()

	sortDocs(matched, q.Sort)

	start := 0
	if opts.ContinuationToken != "" {
		cursor, err := document.DecodeCursor(opts.ContinuationToken, q.Sort)
		if err != nil {
			return document.Page{}, err
		}
		start = positionAfter(matched, q.Sort, cursor)
	}

	limit := opts.MaxItemCount
	if limit <= 0 {
		limit = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := document.Page{
		Items:         matched[start:end],
		RequestCharge: float64(len(matched)),
	}
	if end < len(matched) && end > start {
		last := matched[end-1]
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
	return page, nil
}

// Count returns the number of documents matching the query conditions.
func (s *Store) Count(ctx context.Context, collection string, q document.Query, partitionKey string) (int64, error) {
	if err := s.barrier(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchLocked(collection, q, partitionKey))), nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(ctx context.Context) error { return s.barrier(ctx) }

// Close marks the store closed. Subsequent operations fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) barrier(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return fmt.Errorf("memory store is closed")
	}
	return nil
}

func (s *Store) matchLocked(collection string, q document.Query, partitionKey string) []document.Document {
	var matched []document.Document
	for _, doc := range s.collections[collection] {
		if partitionKey != "" {
			if pk, _ := doc[document.FieldPartitionKey].(string); pk != partitionKey {
				continue
			}
		}
		if matches(doc, q) {
			matched = append(matched, clone(doc))
		}
	}
	return matched
}

func matches(doc document.Document, q document.Query) bool {
	for _, cond := range q.Conditions {
		if !evaluate(doc, cond) {
			return false
		}
	}
	for _, group := range q.Groups {
		anyMatch := false
		for _, cond := range group.Any {
			if evaluate(doc, cond) {
				anyMatch = true
				break
			}
		}
		if !anyMatch {
			return false
		}
	}
	return true
}

func evaluate(doc document.Document, cond document.Condition) bool {
	value, present := document.Lookup(doc, cond.Field)
	if !present {
		return false
	}
	switch cond.Op {
	case document.OpEqual:
		return document.Equal(value, cond.Value)
	case document.OpNotEqual:
		return !document.Equal(value, cond.Value)
	case document.OpGreater:
		return document.Compare(value, cond.Value) > 0
	case document.OpGreaterOrEqual:
		return document.Compare(value, cond.Value) >= 0
	case document.OpLess:
		return document.Compare(value, cond.Value) < 0
	case document.OpLessOrEqual:
		return document.Compare(value, cond.Value) <= 0
	case document.OpIn:
		members, ok := document.ToSlice(cond.Value)
		if !ok {
			return false
		}
		for _, member := range members {
			if document.Equal(value, member) {
				return true
			}
		}
		return false
	case document.OpContains:
		needle, ok := cond.Value.(string)
		if !ok {
			return false
		}
		return document.ContainsFold(value, needle)
	default:
		return false
	}
}

func sortDocs(docs []document.Document, by document.Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		if by.Field != "" {
			vi, _ := document.Lookup(docs[i], by.Field)
			vj, _ := document.Lookup(docs[j], by.Field)
			if c := document.Compare(vi, vj); c != 0 {
				if by.Order == document.SortDesc {
					return c > 0
				}
				return c < 0
			}
		}
		// Tie-break on id so the order is total and cursors are stable.
		if by.Order == document.SortDesc {
			return docID(docs[i]) > docID(docs[j])
		}
		return docID(docs[i]) < docID(docs[j])
	})
}

// positionAfter finds the index of the first document strictly after the
// cursor position in sorted order.
func positionAfter(docs []document.Document, by document.Sort, cursor document.Cursor) int {
	for i, doc := range docs {
		if after(doc, by, cursor) {
			return i
		}
	}
	return len(docs)
}

func after(doc document.Document, by document.Sort, cursor document.Cursor) bool {
	if by.Field != "" {
		v, _ := document.Lookup(doc, by.Field)
		c := document.Compare(v, cursor.SortValue)
		if c != 0 {
			if by.Order == document.SortDesc {
				return c < 0
			}
			return c > 0
		}
	}
	if by.Order == document.SortDesc {
		return docID(doc) < cursor.LastID
	}
	return docID(doc) > cursor.LastID
}

func docID(doc document.Document) string {
	id, _ := doc[document.FieldID].(string)
	return id
}

func identity(doc document.Document) (string, string, error) {
	id, _ := doc[document.FieldID].(string)
	pk, _ := doc[document.FieldPartitionKey].(string)
	if id == "" || pk == "" {
		return "", "", fmt.Errorf("%w: document requires %s and %s", document.ErrBadRequest, document.FieldID, document.FieldPartitionKey)
	}
	return id, pk, nil
}

// clone deep-copies a document through a bson round trip so callers can
// never alias stored state.
func clone(doc document.Document) document.Document {
	raw, err := bson.Marshal(bson.M(doc))
	if err != nil {
		out := make(document.Document, len(doc))
		for k, v := range doc {
			out[k] = v
		}
		return out
	}
	var copied bson.M
	if err := bson.Unmarshal(raw, &copied); err != nil {
		return doc
	}
	return document.Document(copied)
}
