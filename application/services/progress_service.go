package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
)

// ProgressService owns reading progress. Records upsert with last-write-wins
// semantics; no monotonicity is enforced, since owners freely correct their
// own page counts and statuses.
type ProgressService struct {
	progress ports.ProgressRepository
	books    ports.BookRepository
	logger   *zap.Logger
}

// NewProgressService creates a ProgressService.
func NewProgressService(progress ports.ProgressRepository, books ports.BookRepository, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		progress: progress,
		books:    books,
		logger:   logger,
	}
}

// RecordProgressInput carries a progress update.
type RecordProgressInput struct {
	BookID     string
	Page       int
	Percentage float64
	Status     entities.ReadingStatus
}

// Record upserts the caller's progress for a book. The book must exist and
// belong to the caller; recording against anything else is NotFound.
func (s *ProgressService) Record(ctx context.Context, callerID string, input RecordProgressInput) (*entities.Progress, error) {
	book, err := s.books.Get(ctx, input.BookID, callerID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(callerID, book.UserID); err != nil {
		return nil, err
	}

	update, err := entities.NewProgress(callerID, input.BookID, input.Page, input.Percentage, input.Status)
	if err != nil {
		return nil, err
	}

	record := update
	if current, err := s.progress.Get(ctx, input.BookID, callerID); err == nil {
		current.Merge(update)
		record = current
	}

	if err := s.progress.Put(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Debug("progress recorded",
		zap.String("bookId", record.BookID),
		zap.String("ownerId", record.UserID),
		zap.String("status", string(record.Status)),
	)
	return record, nil
}

// Get retrieves the caller's progress for a book.
func (s *ProgressService) Get(ctx context.Context, callerID, bookID string) (*entities.Progress, error) {
	progress, err := s.progress.Get(ctx, bookID, callerID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(callerID, progress.UserID); err != nil {
		return nil, err
	}
	return progress, nil
}

// List retrieves all of the caller's progress records.
func (s *ProgressService) List(ctx context.Context, callerID string) ([]*entities.Progress, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}
	return s.progress.ListByOwner(ctx, callerID)
}
