package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/ports"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
)

// ReadingSummary aggregates a single owner's progress records.
type ReadingSummary struct {
	TotalBooks      int `json:"totalBooks"`
	BooksFinished   int `json:"booksFinished"`
	BooksInProgress int `json:"booksInProgress"`
	BooksUnstarted  int `json:"booksUnstarted"`
	TotalPagesRead  int `json:"totalPagesRead"`
}

// AnalyticsService computes read-only aggregations over the caller's
// progress records. It never mutates state, and tolerates partial records:
// a missing page count contributes zero, an unknown status reads as
// unstarted.
type AnalyticsService struct {
	progress ports.ProgressRepository
	logger   *zap.Logger
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(progress ports.ProgressRepository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		progress: progress,
		logger:   logger,
	}
}

// Summary aggregates the caller's reading activity.
func (s *AnalyticsService) Summary(ctx context.Context, callerID string) (*ReadingSummary, error) {
	if err := auth.Authorize(callerID, callerID); err != nil {
		return nil, err
	}

	records, err := s.progress.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}

	summary := &ReadingSummary{TotalBooks: len(records)}
	for _, record := range records {
		switch record.Status {
		case entities.StatusFinished:
			summary.BooksFinished++
		case entities.StatusInProgress:
			summary.BooksInProgress++
		default:
			summary.BooksUnstarted++
		}
		if record.Page > 0 {
			summary.TotalPagesRead += record.Page
		}
	}
	return summary, nil
}
