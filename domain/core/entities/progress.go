package entities

import (
	"time"

	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// ReadingStatus is the reading state of a book for one owner.
type ReadingStatus string

const (
	StatusUnstarted  ReadingStatus = "unstarted"
	StatusInProgress ReadingStatus = "in-progress"
	StatusFinished   ReadingStatus = "finished"
)

// IsValid reports whether s is one of the known statuses.
func (s ReadingStatus) IsValid() bool {
	switch s {
	case StatusUnstarted, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// Progress records how far an owner has read a book. At most one record
// exists per (BookID, UserID); updates upsert and the last write wins. Any
// status transition is allowed, including finished back to in-progress for a
// re-read, since owners correct their own records.
type Progress struct {
	BookID     string        `json:"bookId"`
	UserID     string        `json:"userId"`
	Page       int           `json:"page"`
	Percentage float64       `json:"percentage"`
	Status     ReadingStatus `json:"status"`
	StartedAt  *time.Time    `json:"startedAt,omitempty"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// NewProgress creates a progress record for the given book and owner.
func NewProgress(userID, bookID string, page int, percentage float64, status ReadingStatus) (*Progress, error) {
	if status == "" {
		status = StatusUnstarted
	}
	now := time.Now().UTC()
	progress := &Progress{
		BookID:     bookID,
		UserID:     userID,
		Page:       page,
		Percentage: percentage,
		Status:     status,
		UpdatedAt:  now,
	}
	switch status {
	case StatusInProgress:
		progress.StartedAt = &now
	case StatusFinished:
		progress.FinishedAt = &now
	}
	if err := progress.Validate(); err != nil {
		return nil, err
	}
	return progress, nil
}

// Validate checks the invariants a progress record must hold before persisting.
func (p *Progress) Validate() error {
	if p.BookID == "" {
		return errors.NewValidationError("progress book id is required")
	}
	if p.UserID == "" {
		return errors.NewValidationError("progress owner is required")
	}
	if !p.Status.IsValid() {
		return errors.NewValidationError("progress status must be unstarted, in-progress or finished")
	}
	if p.Page < 0 {
		return errors.NewValidationError("progress page cannot be negative")
	}
	if p.Percentage < 0 || p.Percentage > 100 {
		return errors.NewValidationError("progress percentage must be between 0 and 100")
	}
	return nil
}

// Merge folds an update into an existing record, preserving the earliest
// start time and stamping the finish time on transition to finished.
func (p *Progress) Merge(update *Progress) {
	p.Page = update.Page
	p.Percentage = update.Percentage
	if p.StartedAt == nil && update.StartedAt != nil {
		p.StartedAt = update.StartedAt
	}
	if update.Status == StatusFinished && p.Status != StatusFinished {
		now := time.Now().UTC()
		p.FinishedAt = &now
	}
	p.Status = update.Status
	p.UpdatedAt = time.Now().UTC()
}
