package repositories

import (
	"context"
	"time"

	"arbor/internal/domain/models"
)

// DescendantOptions filters and shapes subtree queries.
type DescendantOptions struct {
	// IncludeRecycled keeps items whose deleted_at is set in the result.
	IncludeRecycled bool
	// Types restricts results to the given item types when non-empty.
	Types []string
	// Ordered sorts results by path depth, then order key within a parent.
	Ordered bool
}

// OrderKeyAssignment pairs an item with a fresh order key during a rescale.
type OrderKeyAssignment struct {
	ItemID   string
	OrderKey string
}

// ItemRepository owns item rows and the path-prefix queries everything else
// is built on. Bulk prefix operations are single statements: descendants are
// never observable with a path inconsistent with their parent mid-operation.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*models.Item, error)
	GetManyByID(ctx context.Context, ids []string) ([]models.Item, error)

	// GetChildren lists the direct children of parentPath ordered by order
	// key.
	GetChildren(ctx context.Context, parentPath string, includeRecycled bool) ([]models.Item, error)

	// GetDescendants lists the proper descendants of path (the item itself
	// is excluded).
	GetDescendants(ctx context.Context, path string, opts DescendantOptions) ([]models.Item, error)

	// GetAncestorChain returns every ancestor of path including the item
	// itself, ordered root first, in a single lookup.
	GetAncestorChain(ctx context.Context, path string) ([]models.Item, error)

	Insert(ctx context.Context, item *models.Item) error
	InsertMany(ctx context.Context, items []models.Item) error

	// Update rewrites name, extra and updated_at of a single row.
	Update(ctx context.Context, item *models.Item) error

	UpdateOrderKey(ctx context.Context, id, orderKey string) error
	UpdateOrderKeys(ctx context.Context, assignments []OrderKeyAssignment) error

	// RewritePrefix rewrites the paths of the subtree rooted at oldPrefix to
	// newPrefix in one statement and returns the number of rows touched.
	RewritePrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error)

	// MarkRecycledByPrefix stamps deleted_at on the subtree rooted at prefix.
	MarkRecycledByPrefix(ctx context.Context, prefix string, deletedAt time.Time) (int64, error)

	// ClearRecycledByPrefix clears deleted_at on the subtree rooted at prefix.
	ClearRecycledByPrefix(ctx context.Context, prefix string) (int64, error)
}
