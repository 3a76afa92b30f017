package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mohammedfirdouss/serverless-book-tracker/application/services"
	"github.com/mohammedfirdouss/serverless-book-tracker/domain/core/entities"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/auth"
	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/common"
)

// ProgressHandler serves the /progress endpoints and the reading summary.
type ProgressHandler struct {
	progress  *services.ProgressService
	analytics *services.AnalyticsService
	logger    *zap.Logger
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(progress *services.ProgressService, analytics *services.AnalyticsService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, analytics: analytics, logger: logger}
}

// RecordProgressRequest is the body of PUT /books/{bookID}/progress.
type RecordProgressRequest struct {
	Page       int     `json:"page,omitempty" validate:"omitempty,min=0"`
	Percentage float64 `json:"percentage,omitempty" validate:"omitempty,min=0,max=100"`
	Status     string  `json:"status,omitempty" validate:"omitempty,oneof=unstarted in-progress finished"`
}

// RecordProgress handles PUT /books/{bookID}/progress.
func (h *ProgressHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	var req RecordProgressRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	status := entities.ReadingStatus(req.Status)
	if req.Status == "" {
		status = entities.StatusUnstarted
	}

	record, err := h.progress.Record(r.Context(), auth.CallerID(r.Context()), services.RecordProgressInput{
		BookID:     chi.URLParam(r, "bookID"),
		Page:       req.Page,
		Percentage: req.Percentage,
		Status:     status,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// GetProgress handles GET /books/{bookID}/progress.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	record, err := h.progress.Get(r.Context(), auth.CallerID(r.Context()), chi.URLParam(r, "bookID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, record)
}

// ListProgress handles GET /progress.
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	records, err := h.progress.List(r.Context(), auth.CallerID(r.Context()))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, records)
}

// ReadingSummary handles GET /summary.
func (h *ProgressHandler) ReadingSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context(), auth.CallerID(r.Context()))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summary)
}
