package services

import (
	"context"

	"arbor/internal/domain/models"
)

// MembershipService manages explicit grants. Admin on the target item is
// required for every operation.
type MembershipService interface {
	// Share grants an account a permission on the item's subtree. At most
	// one membership may exist per (account, exact item) pair.
	Share(ctx context.Context, actorID, itemID string, req *models.ShareItemRequest) (*models.ItemMembership, error)

	// ListBelow returns every membership attached at or under the item.
	ListBelow(ctx context.Context, actorID, itemID string) ([]models.ItemMembership, error)

	Update(ctx context.Context, actorID, membershipID string, req *models.UpdateMembershipRequest) (*models.ItemMembership, error)
	Delete(ctx context.Context, actorID, membershipID string) error
}

// VisibilityService manages visibility flags at exact tree levels.
type VisibilityService interface {
	Set(ctx context.Context, actorID, itemID string, req *models.SetVisibilityRequest) (*models.ItemVisibility, error)

	// Clear removes the flag at exactly the level that set it; it does not
	// un-hide a subtree hidden at a shallower ancestor.
	Clear(ctx context.Context, actorID, itemID string, visType models.VisibilityType) error

	ListBelow(ctx context.Context, actorID, itemID string) ([]models.ItemVisibility, error)
}
