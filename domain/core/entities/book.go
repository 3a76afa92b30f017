package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// Book is a cataloged title. Every book belongs to exactly one owner; the
// (ID, UserID) pair is the storage key and no path may address a book without
// both halves.
type Book struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn,omitempty"`
	CoverURL  string    `json:"coverUrl,omitempty"`
	Publisher string    `json:"publisher,omitempty"`
	PageCount int       `json:"pageCount,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBook creates a book owned by userID.
func NewBook(userID, title, author string) (*Book, error) {
	book := &Book{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	return book, nil
}

// Validate checks the invariants a book must hold before persisting.
func (b *Book) Validate() error {
	if b.ID == "" {
		return errors.NewValidationError("book id is required")
	}
	if b.UserID == "" {
		return errors.NewValidationError("book owner is required")
	}
	if b.Title == "" {
		return errors.NewValidationError("book title is required")
	}
	if b.PageCount < 0 {
		return errors.NewValidationError("book page count cannot be negative")
	}
	return nil
}

// Touch bumps the update timestamp.
func (b *Book) Touch() {
	b.UpdatedAt = time.Now().UTC()
}
