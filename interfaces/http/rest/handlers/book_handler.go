// Package handlers implements the REST endpoints over the domain services.
// Handlers decode and validate the request, pull the caller identity from the
// context, and let common.RespondAppError map service errors to status codes.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/common"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// BookHandler serves the /books endpoints.
type BookHandler struct {
	books  *services.BookService
	logger *zap.Logger
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(books *services.BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{books: books, logger: logger}
}

// CreateBookRequest is the body of POST /books.
type CreateBookRequest struct {
	Title     string `json:"title" validate:"required,max=512"`
	Author    string `json:"author" validate:"required,max=256"`
	ISBN      string `json:"isbn,omitempty" validate:"omitempty,max=32"`
	CoverURL  string `json:"coverUrl,omitempty" validate:"omitempty,url"`
	Publisher string `json:"publisher,omitempty" validate:"omitempty,max=256"`
	PageCount int    `json:"pageCount,omitempty" validate:"omitempty,min=0"`
	Notes     string `json:"notes,omitempty" validate:"omitempty,max=4096"`
}

// UpdateBookRequest is the body of PUT /books/{bookID}.
type UpdateBookRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,max=512"`
	Author    *string `json:"author,omitempty" validate:"omitempty,max=256"`
	ISBN      *string `json:"isbn,omitempty" validate:"omitempty,max=32"`
	CoverURL  *string `json:"coverUrl,omitempty" validate:"omitempty,url"`
	Publisher *string `json:"publisher,omitempty" validate:"omitempty,max=256"`
	PageCount *int    `json:"pageCount,omitempty" validate:"omitempty,min=0"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=4096"`
}

// CreateBook handles POST /books.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	book, err := h.books.Create(r.Context(), auth.CallerID(r.Context()), services.CreateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		CoverURL:  req.CoverURL,
		Publisher: req.Publisher,
		PageCount: req.PageCount,
		Notes:     req.Notes,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, book)
}

// GetBook handles GET /books/{bookID}.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.Get(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "bookID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, book)
}

// ListBooks handles GET /books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context(), auth.CallerID(r.Context()))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, books)
}

// UpdateBook handles PUT /books/{bookID}.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	book, err := h.books.Update(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "bookID"), services.UpdateBookInput{
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		CoverURL:  req.CoverURL,
		Publisher: req.Publisher,
		PageCount: req.PageCount,
		Notes:     req.Notes,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /books/{bookID}.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.books.Delete(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "bookID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
