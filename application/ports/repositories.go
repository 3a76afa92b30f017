package ports

import (
	"context"

	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/events"
)

// BookRepository is the persistence port for books. Every operation is
// owner-scoped by construction: the (id, owner) pair is the storage key and
// there is no way to list or address records across owners.
type BookRepository interface {
	// Create persists a new book. Returns a Conflict error if the
	// (id, owner) key already exists.
	Create(ctx context.Context, book *entities.Book) error

	// Put upserts a book.
	Put(ctx context.Context, book *entities.Book) error

	// Get retrieves a book, or a NotFound error.
	Get(ctx context.Context, id, ownerID string) (*entities.Book, error)

	// Delete removes a book, or returns a NotFound error if absent.
	Delete(ctx context.Context, id, ownerID string) error

	// ListByOwner retrieves all of an owner's books, unordered.
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Book, error)
}

// TagRepository is the persistence port for tags.
type TagRepository interface {
	Create(ctx context.Context, tag *entities.Tag) error
	Get(ctx context.Context, id, ownerID string) (*entities.Tag, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Tag, error)
}

// CollectionRepository is the persistence port for collections.
type CollectionRepository interface {
	Create(ctx context.Context, collection *entities.Collection) error
	Put(ctx context.Context, collection *entities.Collection) error
	Get(ctx context.Context, id, ownerID string) (*entities.Collection, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Collection, error)
}

// ProgressRepository is the persistence port for reading progress. The key is
// (bookID, owner), so at most one record exists per book per owner.
type ProgressRepository interface {
	// Put upserts a progress record; the last write wins.
	Put(ctx context.Context, progress *entities.Progress) error

	// Get retrieves the progress for a book, or a NotFound error.
	Get(ctx context.Context, bookID, ownerID string) (*entities.Progress, error)

	// Delete removes the progress for a book. Deleting an absent record is
	// not an error; the cascade that calls this must be idempotent.
	Delete(ctx context.Context, bookID, ownerID string) error

	// ListByOwner retrieves all of an owner's progress records.
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Progress, error)
}

// RelationshipStore encodes a many-to-many link as a single record keyed by
// the deterministic combination of the two endpoint ids, partitioned by
// owner. Link and Unlink are idempotent; existence is binary.
type RelationshipStore interface {
	// Link records the relationship. Linking an existing pair is a no-op.
	Link(ctx context.Context, ownerID, leftID, rightID string) error

	// Unlink removes the relationship. Unlinking an absent pair is a no-op.
	Unlink(ctx context.Context, ownerID, leftID, rightID string) error

	// Exists reports whether the relationship is present.
	Exists(ctx context.Context, ownerID, leftID, rightID string) (bool, error)

	// ListRightsForLeft returns all right-side ids linked to leftID.
	ListRightsForLeft(ctx context.Context, ownerID, leftID string) ([]string, error)

	// ListLeftsForRight returns all left-side ids linked to rightID.
	ListLeftsForRight(ctx context.Context, ownerID, rightID string) ([]string, error)
}

// EventPublisher publishes domain events for downstream consumers such as
// the reconciler. Publishing is best-effort; a failed publish never fails
// the triggering operation.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
