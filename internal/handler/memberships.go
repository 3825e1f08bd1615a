package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/httputil"
)

// MembershipHandler handles membership HTTP requests
type MembershipHandler struct {
	membershipService services.MembershipService
	logger            *slog.Logger
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(membershipService services.MembershipService, logger *slog.Logger) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
		logger:            logger,
	}
}

// ShareItem grants an account a permission on an item's subtree
// POST /api/items/{id}/memberships
func (h *MembershipHandler) ShareItem(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	var req models.ShareItemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	membership, err := h.membershipService.Share(r.Context(), accountID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, membership)
}

// ListMemberships lists memberships attached at or under an item
// GET /api/items/{id}/memberships
func (h *MembershipHandler) ListMemberships(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item ID is required")
		return
	}

	memberships, err := h.membershipService.ListBelow(r.Context(), accountID, id)
	if err != nil {
		handleError(w, err)
		return
	}
	if memberships == nil {
		memberships = []models.ItemMembership{}
	}

	httputil.RespondJSON(w, http.StatusOK, memberships)
}

// UpdateMembership changes a membership's permission level
// PATCH /api/memberships/{id}
func (h *MembershipHandler) UpdateMembership(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "membership ID is required")
		return
	}

	var req models.UpdateMembershipRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	membership, err := h.membershipService.Update(r.Context(), accountID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, membership)
}

// DeleteMembership revokes a membership
// DELETE /api/memberships/{id}
func (h *MembershipHandler) DeleteMembership(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "membership ID is required")
		return
	}

	if err := h.membershipService.Delete(r.Context(), accountID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
