// Package domain defines the persisted entities of the trip-planning service.
package domain

import "time"

// Document carries the fields shared by every persisted entity: an opaque
// id, the routing key used by the partitioned store, an optimistic
// concurrency tag rotated on every write, and bookkeeping timestamps.
type Document struct {
	ID           string    `json:"id" bson:"_id" validate:"-"`
	PartitionKey string    `json:"partitionKey" bson:"partitionKey" validate:"-"`
	ETag         string    `json:"etag,omitempty" bson:"etag" validate:"-"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" validate:"-"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt" validate:"-"`
}

// GetID returns the document id.
func (d *Document) GetID() string { return d.ID }

// SetID assigns the document id. Ids are immutable once persisted; this is
// only called by the repository before the first write.
func (d *Document) SetID(id string) { d.ID = id }

// GetPartitionKey returns the routing key.
func (d *Document) GetPartitionKey() string { return d.PartitionKey }

// SetPartitionKey assigns the routing key. Fixed at creation.
func (d *Document) SetPartitionKey(pk string) { d.PartitionKey = pk }

// GetETag returns the concurrency tag of the last read revision.
func (d *Document) GetETag() string { return d.ETag }

// SetETag records the concurrency tag assigned by the store.
func (d *Document) SetETag(etag string) { d.ETag = etag }

// StampCreated sets both timestamps to now. Called once, at creation.
func (d *Document) StampCreated(now time.Time) {
	d.CreatedAt = now
	d.UpdatedAt = now
}

// StampUpdated refreshes updatedAt. Called on every mutation.
func (d *Document) StampUpdated(now time.Time) { d.UpdatedAt = now }

// Entity is implemented by every persisted type via the embedded Document.
type Entity interface {
	GetID() string
	SetID(id string)
	GetPartitionKey() string
	SetPartitionKey(pk string)
	GetETag() string
	SetETag(etag string)
	StampCreated(now time.Time)
	StampUpdated(now time.Time)
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
}

// Range bounds a numeric attribute. A nil bound means the side is open.
type Range struct {
	Min *float64 `json:"min,omitempty" bson:"min,omitempty"`
	Max *float64 `json:"max,omitempty" bson:"max,omitempty"`
}
