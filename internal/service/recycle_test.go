package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
)

func TestRecycleThenRestoreRoundTrips(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Child", "document")
	env.mustShare(t, "alice", root.ID, "bob", models.PermissionRead)

	result, err := env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	recycledChild, err := env.items.Get(ctx, "alice", child.ID)
	require.NoError(t, err)
	require.NotNil(t, recycledChild.DeletedAt, "descendants are recycled with the root")

	trash, err := env.items.ListTrash(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, trash, 1, "only the recycle root is recorded")
	assert.Equal(t, root.ID, trash[0].Recycled.ItemID)

	result, err = env.items.RestoreMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	restoredChild, err := env.items.Get(ctx, "alice", child.ID)
	require.NoError(t, err)
	assert.Nil(t, restoredChild.DeletedAt)
	assert.Equal(t, child.Path, restoredChild.Path, "restore reproduces the prior tree")

	// Memberships were never touched, so access is exactly as before.
	perm, ok, err := env.resolver.Resolve(ctx, "bob", restoredChild.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PermissionRead, perm)

	trash, err = env.items.ListTrash(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestRecycleTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")

	result, err := env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	result, err = env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "conflict", result.Failed[0].Kind)
}

func TestRecycleDescendantOfRecycledConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Child", "folder")

	result, err := env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	result, err = env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{child.ID}})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "conflict", result.Failed[0].Kind)
}

func TestRestoreUnderRecycledParentIsOrphaned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Child", "folder")

	// Child becomes its own recycle root first, then the parent goes too.
	result, err := env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{child.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	result, err = env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	result, err = env.items.RestoreMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{child.ID}})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "orphaned_restore", result.Failed[0].Kind)

	// Restoring the parent revives the whole subtree, child included.
	result, err = env.items.RestoreMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	restored, err := env.items.Get(ctx, "alice", child.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
}

func TestRestoreAncestorClearsNestedTrashRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Child", "folder")

	result, err := env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{child.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	result, err = env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	result, err = env.items.RestoreMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	// The child came back with its ancestor, so a trash record for it
	// would point at a live item.
	restored, err := env.items.Get(ctx, "alice", child.ID)
	require.NoError(t, err)
	require.Nil(t, restored.DeletedAt)

	trash, err := env.items.ListTrash(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, trash)

	// Its recycle record went with the restore; it is no longer a root.
	result, err = env.items.RestoreMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{child.ID}})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "not_found", result.Failed[0].Kind)
}

func TestRestoreWithoutRecycleRootFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Child", "folder")

	result, err := env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{root.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	// The child was recycled as part of the subtree, not as a root.
	result, err = env.items.RestoreMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{child.ID}})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "not_found", result.Failed[0].Kind)
}

func TestRecycledItemsLeaveListings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Workspace", "folder")
	keep := env.mustCreate(t, "alice", &root.ID, "Keep", "document")
	gone := env.mustCreate(t, "alice", &root.ID, "Gone", "document")

	result, err := env.items.RecycleMany(ctx, "alice", &services.RecycleRequest{ItemIDs: []string{gone.ID}})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	children, err := env.items.GetChildren(ctx, "alice", root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, keep.ID, children[0].ID)
}
