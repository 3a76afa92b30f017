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

// TagService owns tags and the book-tag relationship. Attach and detach
// verify both endpoints belong to the caller before touching the link table;
// both are idempotent per the link semantics.
type TagService struct {
	tags      ports.TagRepository
	books     ports.BookRepository
	bookTags  ports.RelationshipStore
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewTagService creates a TagService. metrics may be nil.
func NewTagService(
	tags ports.TagRepository,
	books ports.BookRepository,
	bookTags ports.RelationshipStore,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TagService {
	return &TagService{
		tags:      tags,
		books:     books,
		bookTags:  bookTags,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create adds a tag for the caller.
func (s *TagService) Create(ctx context.Context, callerID, label string) (*entities.Tag, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}

	tag, err := entities.NewTag(callerID, label)
	if err != nil {
		return nil, err
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created",
		zap.String("tagId", tag.ID),
		zap.String("ownerId", tag.UserID),
	)
	return tag, nil
}

// Get retrieves one of the caller's tags.
func (s *TagService) Get(ctx context.Context, callerID, tagID string) (*entities.Tag, error) {
	tag, err := s.tags.Get(ctx, tagID, callerID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(callerID, tag.UserID); err != nil {
		return nil, err
	}
	return tag, nil
}

// List retrieves all of the caller's tags.
func (s *TagService) List(ctx context.Context, callerID string) ([]*entities.Tag, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}
	return s.tags.ListByOwner(ctx, callerID)
}

// Delete removes a tag and cascades the removal of every book link that
// referenced it. Books themselves are untouched.
func (s *TagService) Delete(ctx context.Context, callerID, tagID string) error {
	if _, err := s.Get(ctx, callerID, tagID); err != nil {
		return err
	}

	if err := s.tags.Delete(ctx, tagID, callerID); err != nil {
		return err
	}

	cascadeErr := s.CascadeCleanup(ctx, callerID, tagID)

	event := events.NewTagDeleted(callerID, tagID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish tag deleted event",
			zap.String("tagId", tagID),
			zap.Error(err),
		)
	}

	if cascadeErr != nil {
		if s.metrics != nil {
			s.metrics.RecordCascadeFailure(ctx, "delete-tag")
		}
		return errors.NewInternalError("tag deleted but cascade cleanup incomplete").WithCause(cascadeErr)
	}
	return nil
}

// CascadeCleanup unlinks every book from the tag. Idempotent; reused by the
// reconciler.
func (s *TagService) CascadeCleanup(ctx context.Context, ownerID, tagID string) error {
	cascade := sagas.NewCascade("delete-tag", s.logger).
		AddStep(sagas.Step{
			Name:       "detach-books",
			MaxRetries: cascadeRetries,
			Execute: func(ctx context.Context) error {
				bookIDs, err := s.bookTags.ListLeftsForRight(ctx, ownerID, tagID)
				if err != nil {
					return err
				}
				var firstErr error
				for _, bookID := range bookIDs {
					if err := s.bookTags.Unlink(ctx, ownerID, bookID, tagID); err != nil && firstErr == nil {
						firstErr = err
					}
				}
				return firstErr
			},
		})
	return cascade.Run(ctx)
}

// Attach links a tag to a book after verifying the caller owns both.
// Attaching an already-attached tag is a success, not a conflict.
func (s *TagService) Attach(ctx context.Context, callerID, bookID, tagID string) error {
	if err := s.verifyEndpoints(ctx, callerID, bookID, tagID); err != nil {
		return err
	}
	return s.bookTags.Link(ctx, callerID, bookID, tagID)
}

// Detach unlinks a tag from a book. Detaching an absent link is a success.
func (s *TagService) Detach(ctx context.Context, callerID, bookID, tagID string) error {
	if err := s.verifyEndpoints(ctx, callerID, bookID, tagID); err != nil {
		return err
	}
	return s.bookTags.Unlink(ctx, callerID, bookID, tagID)
}

// ListForBook returns the caller's tags attached to a book. Links whose tag
// no longer exists are soft garbage from a partial cascade and are filtered
// out here rather than surfaced.
func (s *TagService) ListForBook(ctx context.Context, callerID, bookID string) ([]*entities.Tag, error) {
	if _, err := s.books.Get(ctx, bookID, callerID); err != nil {
		return nil, err
	}

	tagIDs, err := s.bookTags.ListRightsForLeft(ctx, callerID, bookID)
	if err != nil {
		return nil, err
	}

	tags := make([]*entities.Tag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		tag, err := s.tags.Get(ctx, tagID, callerID)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// ListBooksForTag returns the caller's books carrying a tag, filtered for
// soft garbage the same way as ListForBook.
func (s *TagService) ListBooksForTag(ctx context.Context, callerID, tagID string) ([]*entities.Book, error) {
	if _, err := s.Get(ctx, callerID, tagID); err != nil {
		return nil, err
	}

	bookIDs, err := s.bookTags.ListLeftsForRight(ctx, callerID, tagID)
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

func (s *TagService) verifyEndpoints(ctx context.Context, callerID, bookID, tagID string) error {
	book, err := s.books.Get(ctx, bookID, callerID)
	if err != nil {
		return err
	}
	if err := auth.Authorize(callerID, book.UserID); err != nil {
		return err
	}

	tag, err := s.tags.Get(ctx, tagID, callerID)
	if err != nil {
		return err
	}
	return auth.Authorize(callerID, tag.UserID)
}
