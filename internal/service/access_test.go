package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
)

// The one subtlety resolution must get right: the nearest grant wins
// outright, it is not a union of all grants along the chain.
func TestResolveNearestGrantWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Team", "folder")
	grandchild := env.mustCreate(t, "alice", &child.ID, "Notes", "document")

	env.mustShare(t, "alice", root.ID, "bob", models.PermissionAdmin)
	env.mustShare(t, "alice", child.ID, "bob", models.PermissionRead)

	perm, ok, err := env.resolver.Resolve(ctx, "bob", grandchild.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PermissionRead, perm, "child grant shadows the admin grant at root")
}

func TestResolveUpgradesThroughCloserGrant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Team", "folder")
	grandchild := env.mustCreate(t, "alice", &child.ID, "Notes", "document")

	env.mustShare(t, "alice", root.ID, "bob", models.PermissionRead)
	env.mustShare(t, "alice", child.ID, "bob", models.PermissionWrite)

	perm, ok, err := env.resolver.Resolve(ctx, "bob", grandchild.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PermissionWrite, perm)
}

func TestResolveNoGrantAnywhere(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	_, ok, err := env.resolver.Resolve(context.Background(), "mallory", root.Path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireComparesLevels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	env.mustShare(t, "alice", root.ID, "bob", models.PermissionWrite)

	assert.NoError(t, env.gate.Require(ctx, "bob", root.Path, models.PermissionRead))
	assert.NoError(t, env.gate.Require(ctx, "bob", root.Path, models.PermissionWrite))
	assert.ErrorIs(t, env.gate.Require(ctx, "bob", root.Path, models.PermissionAdmin), domain.ErrAccessDenied)
}

func TestPublicOpensReadToAnyAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Notes", "document")

	_, err := env.items.Get(ctx, "stranger", child.ID)
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = env.visibilities.Set(ctx, "alice", root.ID, &models.SetVisibilityRequest{Type: models.VisibilityPublic})
	require.NoError(t, err)

	// Public inherits down to the child; read only, no write.
	_, err = env.items.Get(ctx, "stranger", child.ID)
	assert.NoError(t, err)
	assert.ErrorIs(t, env.gate.Require(ctx, "stranger", child.Path, models.PermissionWrite), domain.ErrAccessDenied)
}

func TestHiddenBlocksActorsBelowWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Drafts", "folder")
	env.mustShare(t, "alice", root.ID, "reader", models.PermissionRead)
	env.mustShare(t, "alice", root.ID, "editor", models.PermissionWrite)

	_, err := env.visibilities.Set(ctx, "alice", child.ID, &models.SetVisibilityRequest{Type: models.VisibilityHidden})
	require.NoError(t, err)

	_, err = env.items.Get(ctx, "reader", child.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	_, err = env.items.Get(ctx, "editor", child.ID)
	assert.NoError(t, err)

	// The reader still sees the non-hidden parent.
	_, err = env.items.Get(ctx, "reader", root.ID)
	assert.NoError(t, err)
}

func TestHiddenIsMonotoneOverPublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Inner", "folder")

	_, err := env.visibilities.Set(ctx, "alice", root.ID, &models.SetVisibilityRequest{Type: models.VisibilityHidden})
	require.NoError(t, err)
	_, err = env.visibilities.Set(ctx, "alice", child.ID, &models.SetVisibilityRequest{Type: models.VisibilityPublic})
	require.NoError(t, err)

	// An ancestor's hidden flag dominates a descendant's public flag.
	_, err = env.items.Get(ctx, "stranger", child.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestClearHiddenAtExactLevel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Drafts", "folder")
	env.mustShare(t, "alice", root.ID, "reader", models.PermissionRead)

	_, err := env.visibilities.Set(ctx, "alice", child.ID, &models.SetVisibilityRequest{Type: models.VisibilityHidden})
	require.NoError(t, err)
	_, err = env.items.Get(ctx, "reader", child.ID)
	require.ErrorIs(t, err, domain.ErrAccessDenied)

	require.NoError(t, env.visibilities.Clear(ctx, "alice", child.ID, models.VisibilityHidden))
	_, err = env.items.Get(ctx, "reader", child.ID)
	assert.NoError(t, err)
}

func TestShareRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	env.mustShare(t, "alice", root.ID, "bob", models.PermissionWrite)

	_, err := env.memberships.Share(context.Background(), "bob", root.ID, &models.ShareItemRequest{
		AccountID:  "carol",
		Permission: models.PermissionRead,
	})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestShareTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	env.mustShare(t, "alice", root.ID, "bob", models.PermissionRead)

	_, err := env.memberships.Share(context.Background(), "alice", root.ID, &models.ShareItemRequest{
		AccountID:  "bob",
		Permission: models.PermissionWrite,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
