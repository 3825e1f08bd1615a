package repositories

import (
	"context"

	"arbor/internal/domain/models"
)

// MembershipRepository owns membership rows. Grants are keyed by item path;
// the resolver asks for exact-path matches over a precomputed prefix list so
// inheritance costs one round trip.
type MembershipRepository interface {
	GetByID(ctx context.Context, id string) (*models.ItemMembership, error)

	// GetForAccountAtPaths returns the account's memberships whose item_path
	// is exactly one of the given paths.
	GetForAccountAtPaths(ctx context.Context, accountID string, paths []string) ([]models.ItemMembership, error)

	// GetByAccountAndPath returns the membership at exactly this path, if any.
	GetByAccountAndPath(ctx context.Context, accountID, path string) (*models.ItemMembership, error)

	// GetBelowPath returns every membership attached at or under the given
	// path prefix, for any account.
	GetBelowPath(ctx context.Context, path string) ([]models.ItemMembership, error)

	Insert(ctx context.Context, membership *models.ItemMembership) error
	InsertMany(ctx context.Context, memberships []models.ItemMembership) error
	UpdatePermission(ctx context.Context, id string, permission models.Permission) error
	Delete(ctx context.Context, id string) error
}
