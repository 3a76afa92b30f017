package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// Collection is a named, owner-scoped grouping of books.
type Collection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCollection creates a collection owned by userID.
func NewCollection(userID, name, description string) (*Collection, error) {
	collection := &Collection{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := collection.Validate(); err != nil {
		return nil, err
	}
	return collection, nil
}

// Validate checks the invariants a collection must hold before persisting.
func (c *Collection) Validate() error {
	if c.ID == "" {
		return errors.NewValidationError("collection id is required")
	}
	if c.UserID == "" {
		return errors.NewValidationError("collection owner is required")
	}
	if c.Name == "" {
		return errors.NewValidationError("collection name is required")
	}
	return nil
}

// Touch bumps the update timestamp.
func (c *Collection) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
