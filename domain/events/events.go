package events

import (
	"time"

	"github.com/google/uuid"
)

// Event source for EventBridge entries.
const SourceBookTracker = "book-tracker.core"

// Event types published on entity deletion. The reconciler subscribes to
// these to re-run cascades whose steps partially failed.
const (
	EventTypeBookDeleted       = "book.deleted"
	EventTypeTagDeleted        = "tag.deleted"
	EventTypeCollectionDeleted = "collection.deleted"
)

// DomainEvent is the contract every published event satisfies.
type DomainEvent interface {
	GetEventID() string
	GetEventType() string
	GetOwnerID() string
	GetEntityID() string
	GetTimestamp() time.Time
}

// BaseEvent carries the fields shared by all domain events.
type BaseEvent struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	OwnerID   string    `json:"ownerId"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseEvent(eventType, ownerID, entityID string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		OwnerID:   ownerID,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetOwnerID() string      { return e.OwnerID }
func (e BaseEvent) GetEntityID() string     { return e.EntityID }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// BookDeleted is published after a book delete cascade runs, whether or not
// every cascade step succeeded.
type BookDeleted struct {
	BaseEvent
}

// NewBookDeleted creates a BookDeleted event.
func NewBookDeleted(ownerID, bookID string) BookDeleted {
	return BookDeleted{BaseEvent: newBaseEvent(EventTypeBookDeleted, ownerID, bookID)}
}

// TagDeleted is published after a tag delete cascade runs.
type TagDeleted struct {
	BaseEvent
}

// NewTagDeleted creates a TagDeleted event.
func NewTagDeleted(ownerID, tagID string) TagDeleted {
	return TagDeleted{BaseEvent: newBaseEvent(EventTypeTagDeleted, ownerID, tagID)}
}

// CollectionDeleted is published after a collection delete cascade runs.
type CollectionDeleted struct {
	BaseEvent
}

// NewCollectionDeleted creates a CollectionDeleted event.
func NewCollectionDeleted(ownerID, collectionID string) CollectionDeleted {
	return CollectionDeleted{BaseEvent: newBaseEvent(EventTypeCollectionDeleted, ownerID, collectionID)}
}
