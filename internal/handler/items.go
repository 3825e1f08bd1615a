package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"arbor/internal/config"
	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/httputil"
)

// ItemHandler handles item HTTP requests
type ItemHandler struct {
	itemService services.ItemService
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService services.ItemService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// CreateItem creates a new item
// POST /api/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req models.CreateItemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.itemService.Create(r.Context(), accountID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, item)
}

// GetItem retrieves an item by ID
// GET /api/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	item, err := h.itemService.Get(r.Context(), accountID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// GetChildren lists an item's direct children in display order
// GET /api/items/{id}/children
func (h *ItemHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	children, err := h.itemService.GetChildren(r.Context(), accountID, id)
	if err != nil {
		handleError(w, err)
		return
	}
	if children == nil {
		children = []models.Item{}
	}

	httputil.RespondJSON(w, http.StatusOK, children)
}

// GetDescendants lists an item's whole live subtree
// GET /api/items/{id}/descendants
func (h *ItemHandler) GetDescendants(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	descendants, err := h.itemService.GetDescendants(r.Context(), accountID, id)
	if err != nil {
		handleError(w, err)
		return
	}
	if descendants == nil {
		descendants = []models.Item{}
	}

	httputil.RespondJSON(w, http.StatusOK, descendants)
}

// GetAncestors lists an item's breadcrumb chain, root first
// GET /api/items/{id}/ancestors
func (h *ItemHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	ancestors, err := h.itemService.GetAncestors(r.Context(), accountID, id)
	if err != nil {
		handleError(w, err)
		return
	}
	if ancestors == nil {
		ancestors = []models.Item{}
	}

	httputil.RespondJSON(w, http.StatusOK, ancestors)
}

// UpdateItem updates an item's properties in place
// PATCH /api/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	var req models.UpdateItemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.itemService.Update(r.Context(), accountID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// MoveItems moves one or more items to a new parent
// POST /api/items/move
// Always returns the per-target success/failure partition.
func (h *ItemHandler) MoveItems(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req services.MoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkBatchSize(req.ItemIDs); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.itemService.MoveMany(r.Context(), accountID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// CopyItems deep-copies one or more items under a new parent
// POST /api/items/copy
func (h *ItemHandler) CopyItems(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var req services.CopyRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkBatchSize(req.ItemIDs); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.itemService.CopyMany(r.Context(), accountID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ReorderItem repositions an item among its siblings
// POST /api/items/{id}/reorder
func (h *ItemHandler) ReorderItem(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	var req services.ReorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.itemService.Reorder(r.Context(), accountID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, item)
}

// checkBatchSize rejects empty and oversized batch target lists before any
// per-target work starts.
func checkBatchSize(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one item ID is required")
	}
	if len(ids) > config.MaxBatchTargets {
		return fmt.Errorf("too many targets: %d exceeds the limit of %d", len(ids), config.MaxBatchTargets)
	}
	return nil
}
