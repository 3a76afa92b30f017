package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// Tag is an owner-scoped label attachable to any number of the owner's books.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTag creates a tag owned by userID.
func NewTag(userID, label string) (*Tag, error) {
	tag := &Tag{
		ID:        uuid.New().String(),
		UserID:    userID,
		Label:     strings.TrimSpace(label),
		CreatedAt: time.Now().UTC(),
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

// Validate checks the invariants a tag must hold before persisting.
func (t *Tag) Validate() error {
	if t.ID == "" {
		return errors.NewValidationError("tag id is required")
	}
	if t.UserID == "" {
		return errors.NewValidationError("tag owner is required")
	}
	if t.Label == "" {
		return errors.NewValidationError("tag label is required")
	}
	return nil
}
