package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/common"
)

// TagHandler serves the /tags endpoints and the tag side of /books.
type TagHandler struct {
	tags   *services.TagService
	logger *zap.Logger
}

// NewTagHandler creates a TagHandler.
func NewTagHandler(tags *services.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// CreateTagRequest is the body of POST /tags.
type CreateTagRequest struct {
	Label string `json:"label" validate:"required,max=128"`
}

// CreateTag handles POST /tags.
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tag, err := h.tags.Create(r.Context(), auth.CallerID(r.Context()), req.Label)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, tag)
}

// ListTags handles GET /tags.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context(), auth.CallerID(r.Context()))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, tags)
}

// DeleteTag handles DELETE /tags/{tagID}.
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "tagID")); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// AttachTag handles POST /books/{bookID}/tags/{tagID}.
func (h *TagHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	err := h.tags.Attach(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "bookID"), chi.URLParam(r, "tagID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"linked": true})
}

// DetachTag handles DELETE /books/{bookID}/tags/{tagID}.
func (h *TagHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	err := h.tags.Detach(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "bookID"), chi.URLParam(r, "tagID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{"linked": false})
}

// ListTagsForBook handles GET /books/{bookID}/tags.
func (h *TagHandler) ListTagsForBook(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.ListForBook(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "bookID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, tags)
}

// ListBooksForTag handles GET /tags/{tagID}/books.
func (h *TagHandler) ListBooksForTag(w http.ResponseWriter, r *http.Request) {
	books, err := h.tags.ListBooksForTag(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "tagID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, books)
}
