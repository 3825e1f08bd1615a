package repositories

import (
	"context"

	"arbor/internal/domain/models"
)

// VisibilityRepository owns visibility rows, keyed by item path like
// memberships.
type VisibilityRepository interface {
	// GetAtPaths returns every visibility whose item_path is exactly one of
	// the given paths.
	GetAtPaths(ctx context.Context, paths []string) ([]models.ItemVisibility, error)

	// GetByPathAndType returns the visibility row at exactly this path and
	// type, if any.
	GetByPathAndType(ctx context.Context, path string, visType models.VisibilityType) (*models.ItemVisibility, error)

	// GetBelowPath returns every visibility attached at or under the given
	// path prefix.
	GetBelowPath(ctx context.Context, path string) ([]models.ItemVisibility, error)

	Insert(ctx context.Context, visibility *models.ItemVisibility) error
	InsertMany(ctx context.Context, visibilities []models.ItemVisibility) error

	// Delete removes the flag at exactly the level that set it.
	Delete(ctx context.Context, path string, visType models.VisibilityType) error
}
