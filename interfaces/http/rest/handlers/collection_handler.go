package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/common"
)

// CollectionHandler serves the /collections endpoints.
type CollectionHandler struct {
	collections *services.CollectionService
	logger      *zap.Logger
}

// NewCollectionHandler creates a CollectionHandler.
func NewCollectionHandler(collections *services.CollectionService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{collections: collections, logger: logger}
}

// CreateCollectionRequest is the body of POST /collections.
type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2048"`
}

// UpdateCollectionRequest is the body of PUT /collections/{collectionID}.
type UpdateCollectionRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=256"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2048"`
}

// CreateCollection handles POST /collections.
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	collection, err := h.collections.Create(r.Context(), auth.CallerID(r.Context()), req.Name, req.Description)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, collection)
}

// GetCollection handles GET /collections/{collectionID}.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	collection, err := h.collections.Get(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "collectionID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, collection)
}

// ListCollections handles GET /collections.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collections.List(r.Context(), auth.CallerID(r.Context()))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, collections)
}

// UpdateCollection handles PUT /collections/{collectionID}.
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	var req UpdateCollectionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	collection, err := h.collections.Update(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "collectionID"), services.UpdateCollectionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, collection)
}

// DeleteCollection handles DELETE /collections/{collectionID}.
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.collections.Delete(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "collectionID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// AddBook handles POST /collections/{collectionID}/books/{bookID}.
func (h *CollectionHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	err := h.collections.AddBook(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "collectionID"), chi.URLParam(r, "bookID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"linked": true})
}

// RemoveBook handles DELETE /collections/{collectionID}/books/{bookID}.
func (h *CollectionHandler) RemoveBook(w http.ResponseWriter, r *http.Request) {
	err := h.collections.RemoveBook(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "collectionID"), chi.URLParam(r, "bookID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"linked": false})
}

// ListBooks handles GET /collections/{collectionID}/books.
func (h *CollectionHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.collections.ListBooks(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "collectionID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, books)
}
