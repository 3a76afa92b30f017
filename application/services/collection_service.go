package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/application/sagas"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/events"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/observability"
)

// CollectionService owns collections and the collection-book relationship,
// mirroring TagService's pattern against books.
type CollectionService struct {
	collections     ports.CollectionRepository
	books           ports.BookRepository
	collectionBooks ports.RelationshipStore
	publisher       ports.EventPublisher
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// NewCollectionService creates a CollectionService. metrics may be nil.
func NewCollectionService(
	collections ports.CollectionRepository,
	books ports.BookRepository,
	collectionBooks ports.RelationshipStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CollectionService {
	return &CollectionService{
		collections:     collections,
		books:           books,
		collectionBooks: collectionBooks,
		publisher:       publisher,
		metrics:         metrics,
		logger:          logger,
	}
}

// UpdateCollectionInput carries the mutable fields of a collection.
type UpdateCollectionInput struct {
	Name        *string
	Description *string
}

// Create adds a collection for the caller.
func (s *CollectionService) Create(ctx context.Context, callerID, name, description string) (*entities.Collection, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}

	collection, err := entities.NewCollection(callerID, name, description)
	if err != nil {
		return nil, err
	}
	if err := s.collections.Create(ctx, collection); err != nil {
		return nil, err
	}

	s.logger.Info("collection created",
		zap.String("collectionId", collection.ID),
		zap.String("ownerId", collection.UserID),
	)
	return collection, nil
}

// Get retrieves one of the caller's collections.
func (s *CollectionService) Get(ctx context.Context, callerID, collectionID string) (*entities.Collection, error) {
	collection, err := s.collections.Get(ctx, collectionID, callerID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(callerID, collection.UserID); err != nil {
		return nil, err
	}
	return collection, nil
}

// List retrieves all of the caller's collections.
func (s *CollectionService) List(ctx context.Context, callerID string) ([]*entities.Collection, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}
	return s.collections.ListByOwner(ctx, callerID)
}

// Update applies a partial update to one of the caller's collections.
func (s *CollectionService) Update(ctx context.Context, callerID, collectionID string, input UpdateCollectionInput) (*entities.Collection, error) {
	collection, err := s.Get(ctx, callerID, collectionID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		collection.Name = *input.Name
	}
	if input.Description != nil {
		collection.Description = *input.Description
	}
	collection.Touch()

	if err := collection.Validate(); err != nil {
		return nil, err
	}
	if err := s.collections.Put(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

// Delete removes a collection and cascades the removal of its membership
// records. Member books are untouched.
func (s *CollectionService) Delete(ctx context.Context, callerID, collectionID string) error {
	if _, err := s.Get(ctx, callerID, collectionID); err != nil {
		return err
	}

	if err := s.collections.Delete(ctx, collectionID, callerID); err != nil {
		return err
	}

	cascadeErr := s.CascadeCleanup(ctx, callerID, collectionID)

	event := events.NewCollectionDeleted(callerID, collectionID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish collection deleted event",
			zap.String("collectionId", collectionID),
			zap.Error(err),
		)
	}

	if cascadeErr != nil {
		if s.metrics != nil {
			s.metrics.RecordCascadeFailure(ctx, "delete-collection")
		}
		return errors.NewInternalError("collection deleted but cascade cleanup incomplete").WithCause(cascadeErr)
	}
	return nil
}

// CascadeCleanup removes every membership record of the collection.
// Idempotent; reused by the reconciler.
func (s *CollectionService) CascadeCleanup(ctx context.Context, ownerID, collectionID string) error {
	cascade := sagas.NewCascade("delete-collection", s.logger).
		AddStep(sagas.Step{
			Name:       "remove-members",
			MaxRetries: cascadeRetries,
			Execute: func(ctx context.Context) error {
				bookIDs, err := s.collectionBooks.ListRightsForLeft(ctx, ownerID, collectionID)
				if err != nil {
					return err
				}
				var firstErr error
				for _, bookID := range bookIDs {
					if err := s.collectionBooks.Unlink(ctx, ownerID, collectionID, bookID); err != nil && firstErr == nil {
						firstErr = err
					}
				}
				return firstErr
			},
		})
	return cascade.Run(ctx)
}

// AddBook links a book into a collection after verifying the caller owns
// both. Adding an existing member is a success.
func (s *CollectionService) AddBook(ctx context.Context, callerID, collectionID, bookID string) error {
	if err := s.verifyEndpoints(ctx, callerID, collectionID, bookID); err != nil {
		return err
	}
	return s.collectionBooks.Link(ctx, callerID, collectionID, bookID)
}

// RemoveBook unlinks a book from a collection. Removing a non-member is a
// success.
func (s *CollectionService) RemoveBook(ctx context.Context, callerID, collectionID, bookID string) error {
	if err := s.verifyEndpoints(ctx, callerID, collectionID, bookID); err != nil {
		return err
	}
	return s.collectionBooks.Unlink(ctx, callerID, collectionID, bookID)
}

// ListBooks returns the books in a collection, filtering out membership
// records whose book no longer exists (soft garbage from a partial cascade).
func (s *CollectionService) ListBooks(ctx context.Context, callerID, collectionID string) ([]*entities.Book, error) {
	if _, err := s.Get(ctx, callerID, collectionID); err != nil {
		return nil, err
	}

	bookIDs, err := s.collectionBooks.ListRightsForLeft(ctx, callerID, collectionID)
	if err != nil {
		return nil, err
	}

	books := make([]*entities.Book, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		book, err := s.books.Get(ctx, bookID, callerID)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

func (s *CollectionService) verifyEndpoints(ctx context.Context, callerID, collectionID, bookID string) error {
	collection, err := s.collections.Get(ctx, collectionID, callerID)
	if err != nil {
		return err
	}
	if err := auth.Authorize(callerID, collection.UserID); err != nil {
		return err
	}

	book, err := s.books.Get(ctx, bookID, callerID)
	if err != nil {
		return err
	}
	return auth.Authorize(callerID, book.UserID)
}
