package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/httputil"
)

// VisibilityHandler handles visibility HTTP requests
type VisibilityHandler struct {
	visibilityService services.VisibilityService
	logger            *slog.Logger
}

// NewVisibilityHandler creates a new visibility handler
func NewVisibilityHandler(visibilityService services.VisibilityService, logger *slog.Logger) *VisibilityHandler {
	return &VisibilityHandler{
		visibilityService: visibilityService,
		logger:            logger,
	}
}

// SetVisibility attaches a visibility flag to an item's subtree
// POST /api/items/{id}/visibilities
func (h *VisibilityHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	var req models.SetVisibilityRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	visibility, err := h.visibilityService.Set(r.Context(), accountID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, visibility)
}

// ClearVisibility removes a visibility flag at exactly this item's level
// DELETE /api/items/{id}/visibilities/{type}
func (h *VisibilityHandler) ClearVisibility(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	visType := r.PathValue("type")
	if id == "" || visType == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID and visibility type are required")
		return
	}

	if err := h.visibilityService.Clear(r.Context(), accountID, id, models.VisibilityType(visType)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVisibilities lists visibility flags attached at or under an item
// GET /api/items/{id}/visibilities
func (h *VisibilityHandler) ListVisibilities(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	visibilities, err := h.visibilityService.ListBelow(r.Context(), accountID, id)
	if err != nil {
		handleError(w, err)
		return
	}
	if visibilities == nil {
		visibilities = []models.ItemVisibility{}
	}

	httputil.RespondJSON(w, http.StatusOK, visibilities)
}
