package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/httputil"
)

// RecycleHandler handles recycle bin HTTP requests
type RecycleHandler struct {
	itemService services.ItemService
	logger      *slog.Logger
}

// NewRecycleHandler creates a new recycle handler
func NewRecycleHandler(itemService services.ItemService, logger *slog.Logger) *RecycleHandler {
	return &RecycleHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// RecycleItems soft-deletes one or more items with their subtrees
// POST /api/items/recycle
func (h *RecycleHandler) RecycleItems(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req services.RecycleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkBatchSize(req.ItemIDs); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.itemService.RecycleMany(r.Context(), accountID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RestoreItems restores one or more recycle roots with their subtrees
// POST /api/items/restore
func (h *RecycleHandler) RestoreItems(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req services.RecycleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkBatchSize(req.ItemIDs); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.itemService.RestoreMany(r.Context(), accountID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListTrash lists the account's recycle roots, newest first
// GET /api/trash
func (h *RecycleHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	entries, err := h.itemService.ListTrash(r.Context(), accountID)
	if err != nil {
		handleError(w, err)
		return
	}
	if entries == nil {
		entries = []models.TrashEntry{}
	}

	httputil.RespondJSON(w, http.StatusOK, entries)
}
