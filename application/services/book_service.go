// Package services implements the domain operations behind the resolver
// dispatch. Every service threads the caller identity explicitly and routes
// each ownership decision through auth.Authorize, so a caller probing another
// owner's ids always sees the same NotFound outcome as a miss.
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

const cascadeRetries = 3

// BookService owns the book lifecycle, including the delete cascade that
// removes a book's tag links, collection memberships and progress record.
type BookService struct {
	books           ports.BookRepository
	bookTags        ports.RelationshipStore
	collectionBooks ports.RelationshipStore
	progress        ports.ProgressRepository
	publisher       ports.EventPublisher
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// NewBookService creates a BookService. metrics may be nil.
func NewBookService(
	books ports.BookRepository,
	bookTags ports.RelationshipStore,
	collectionBooks ports.RelationshipStore,
	progress ports.ProgressRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BookService {
	return &BookService{
		books:           books,
		bookTags:        bookTags,
		collectionBooks: collectionBooks,
		progress:        progress,
		publisher:       publisher,
		metrics:         metrics,
		logger:          logger,
	}
}

// CreateBookInput carries the caller-supplied fields for a new book.
type CreateBookInput struct {
	Title     string
	Author    string
	ISBN      string
	CoverURL  string
	Publisher string
	PageCount int
	Notes     string
}

// UpdateBookInput carries the mutable fields of a book. Nil pointers leave
// the current value untouched.
type UpdateBookInput struct {
	Title     *string
	Author    *string
	ISBN      *string
	CoverURL  *string
	Publisher *string
	PageCount *int
	Notes     *string
}

// Create catalogs a new book for the caller.
func (s *BookService) Create(ctx context.Context, callerID string, input CreateBookInput) (*entities.Book, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}

	book, err := entities.NewBook(callerID, input.Title, input.Author)
	if err != nil {
		return nil, err
	}
	book.ISBN = input.ISBN
	book.CoverURL = input.CoverURL
	book.Publisher = input.Publisher
	book.PageCount = input.PageCount
	book.Notes = input.Notes
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info("book created",
		zap.String("bookId", book.ID),
		zap.String("ownerId", book.UserID),
	)
	return book, nil
}

// Get retrieves one of the caller's books.
func (s *BookService) Get(ctx context.Context, callerID, bookID string) (*entities.Book, error) {
	book, err := s.books.Get(ctx, bookID, callerID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(callerID, book.UserID); err != nil {
		return nil, err
	}
	return book, nil
}

// List retrieves all of the caller's books.
func (s *BookService) List(ctx context.Context, callerID string) ([]*entities.Book, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}
	return s.books.ListByOwner(ctx, callerID)
}

// Update applies a partial update to one of the caller's books.
func (s *BookService) Update(ctx context.Context, callerID, bookID string, input UpdateBookInput) (*entities.Book, error) {
	book, err := s.Get(ctx, callerID, bookID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.CoverURL != nil {
		book.CoverURL = *input.CoverURL
	}
	if input.Publisher != nil {
		book.Publisher = *input.Publisher
	}
	if input.PageCount != nil {
		book.PageCount = *input.PageCount
	}
	if input.Notes != nil {
		book.Notes = *input.Notes
	}
	book.Touch()

	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := s.books.Put(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes one of the caller's books and cascades the removal of its
// tag links, collection memberships and progress record. The cascade is
// best-effort: completed steps are never rolled back, a partial failure
// surfaces as InternalError, and the published BookDeleted event lets the
// reconciler finish the sweep later.
func (s *BookService) Delete(ctx context.Context, callerID, bookID string) error {
	if _, err := s.Get(ctx, callerID, bookID); err != nil {
		return err
	}

	if err := s.books.Delete(ctx, bookID, callerID); err != nil {
		return err
	}

	cascadeErr := s.CascadeCleanup(ctx, callerID, bookID)

	event := events.NewBookDeleted(callerID, bookID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish book deleted event",
			zap.String("bookId", bookID),
			zap.Error(err),
		)
	}

	if cascadeErr != nil {
		if s.metrics != nil {
			s.metrics.RecordCascadeFailure(ctx, "delete-book")
		}
		return errors.NewInternalError("book deleted but cascade cleanup incomplete").WithCause(cascadeErr)
	}
	return nil
}

// CascadeCleanup removes every record that referenced the book. All steps
// are idempotent, so the reconciler calls this again for orphan sweeps.
func (s *BookService) CascadeCleanup(ctx context.Context, ownerID, bookID string) error {
	cascade := sagas.NewCascade("delete-book", s.logger).
		AddStep(sagas.Step{
			Name:       "detach-tags",
			MaxRetries: cascadeRetries,
			Execute: func(ctx context.Context) error {
				return s.unlinkAll(ctx, s.bookTags, ownerID, bookID, true)
			},
		}).
		AddStep(sagas.Step{
			Name:       "leave-collections",
			MaxRetries: cascadeRetries,
			Execute: func(ctx context.Context) error {
				return s.unlinkAll(ctx, s.collectionBooks, ownerID, bookID, false)
			},
		}).
		AddStep(sagas.Step{
			Name:       "delete-progress",
			MaxRetries: cascadeRetries,
			Execute: func(ctx context.Context) error {
				return s.progress.Delete(ctx, bookID, ownerID)
			},
		})

	return cascade.Run(ctx)
}

// unlinkAll removes every relationship record with the book on the given
// side. asLeft selects which listing direction the book id keys into.
func (s *BookService) unlinkAll(ctx context.Context, store ports.RelationshipStore, ownerID, bookID string, asLeft bool) error {
	var others []string
	var err error
	if asLeft {
		others, err = store.ListRightsForLeft(ctx, ownerID, bookID)
	} else {
		others, err = store.ListLeftsForRight(ctx, ownerID, bookID)
	}
	if err != nil {
		return err
	}

	var firstErr error
	for _, otherID := range others {
		if asLeft {
			err = store.Unlink(ctx, ownerID, bookID, otherID)
		} else {
			err = store.Unlink(ctx, ownerID, otherID, bookID)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
