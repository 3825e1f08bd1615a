package services

import (
	"context"

	"arbor/internal/domain/models"
)

// MoveRequest names the targets of a bulk move and their destination.
// PreviousSiblingID pins the insertion position among the destination's
// children; nil appends at the end.
type MoveRequest struct {
	ItemIDs           []string `json:"item_ids"`
	NewParentID       *string  `json:"new_parent_id"` // nil moves to root level
	PreviousSiblingID *string  `json:"previous_sibling_id,omitempty"`
}

// CopyRequest names the targets of a bulk deep copy and their destination.
type CopyRequest struct {
	ItemIDs     []string `json:"item_ids"`
	NewParentID *string  `json:"new_parent_id"`
}

// RecycleRequest names the targets of a bulk recycle or restore.
type RecycleRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// ReorderRequest repositions one item among its current siblings.
type ReorderRequest struct {
	PreviousSiblingID *string `json:"previous_sibling_id,omitempty"` // nil moves to the front
}

// ItemService is the subtree mutation engine plus the item read surface.
// Batch operations process each target independently: one transaction per
// target, an explicit success/failure partition as the result.
type ItemService interface {
	Create(ctx context.Context, accountID string, req *models.CreateItemRequest) (*models.Item, error)
	Get(ctx context.Context, accountID, itemID string) (*models.Item, error)
	GetChildren(ctx context.Context, accountID, itemID string) ([]models.Item, error)
	GetDescendants(ctx context.Context, accountID, itemID string) ([]models.Item, error)

	// GetAncestors returns the item's ancestor chain, root first, the item
	// itself included.
	GetAncestors(ctx context.Context, accountID, itemID string) ([]models.Item, error)
	Update(ctx context.Context, accountID, itemID string, req *models.UpdateItemRequest) (*models.Item, error)

	MoveMany(ctx context.Context, accountID string, req *MoveRequest) (*models.BatchResult, error)
	CopyMany(ctx context.Context, accountID string, req *CopyRequest) (*models.BatchResult, error)
	RecycleMany(ctx context.Context, accountID string, req *RecycleRequest) (*models.BatchResult, error)
	RestoreMany(ctx context.Context, accountID string, req *RecycleRequest) (*models.BatchResult, error)
	Reorder(ctx context.Context, accountID, itemID string, req *ReorderRequest) (*models.Item, error)

	// ListTrash returns the account's recycle roots, newest first.
	ListTrash(ctx context.Context, accountID string) ([]models.TrashEntry, error)
}
