package repositories

import (
	"context"

	"arbor/internal/domain/models"
)

// RecycledItemRepository owns the recycle-root pointer table. One row exists
// per recycled subtree root; descendants are covered implicitly by path
// prefix.
type RecycledItemRepository interface {
	GetByItemID(ctx context.Context, itemID string) (*models.RecycledItemData, error)

	// ListByCreator returns the recycle roots an account put in the trash,
	// newest first.
	ListByCreator(ctx context.Context, creatorID string) ([]models.RecycledItemData, error)

	Insert(ctx context.Context, recycled *models.RecycledItemData) error

	// DeleteByPathPrefix removes every recycle-root record whose item lies
	// at or under the given path. Restoring an ancestor revives nested
	// recycle roots too, so their records must go in the same transaction.
	DeleteByPathPrefix(ctx context.Context, path string) (int64, error)
}
