package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
	"arbor/internal/itempath"
)

func TestMoveSubtreePreservesDescendantSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Source", "folder")
	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	sub := env.mustCreate(t, "alice", &src.ID, "Sub", "folder")
	env.mustCreate(t, "alice", &sub.ID, "Deep", "document")
	env.mustCreate(t, "alice", &sub.ID, "Deeper", "document")

	before, err := env.items.GetDescendants(ctx, "alice", sub.ID)
	require.NoError(t, err)

	result, err := env.items.MoveMany(ctx, "alice", &services.MoveRequest{
		ItemIDs:     []string{sub.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	require.Len(t, result.Succeeded, 1)

	moved := result.Succeeded[0]
	assert.Equal(t, dst.Path+"."+sub.ID, moved.Path)

	after, err := env.items.GetDescendants(ctx, "alice", sub.ID)
	require.NoError(t, err)
	require.Len(t, after, len(before))

	beforeIDs := make(map[string]struct{}, len(before))
	for _, item := range before {
		beforeIDs[item.ID] = struct{}{}
	}
	for _, item := range after {
		_, present := beforeIDs[item.ID]
		assert.True(t, present, "descendant %s must survive the move", item.ID)
		assert.True(t, itempath.IsDescendant(item.Path, moved.Path),
			"descendant path %s must extend the new root path %s", item.Path, moved.Path)
	}
}

func TestMoveIntoOwnSubtreeIsCyclic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	root := env.mustCreate(t, "alice", nil, "Root", "folder")
	child := env.mustCreate(t, "alice", &root.ID, "Child", "folder")

	result, err := env.items.MoveMany(ctx, "alice", &services.MoveRequest{
		ItemIDs:     []string{root.ID},
		NewParentID: &child.ID,
	})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "cyclic_move", result.Failed[0].Kind)

	result, err = env.items.MoveMany(ctx, "alice", &services.MoveRequest{
		ItemIDs:     []string{root.ID},
		NewParentID: &root.ID,
	})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "cyclic_move", result.Failed[0].Kind)
}

func TestMoveReRootsMembershipScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Source", "folder")
	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	sub := env.mustCreate(t, "alice", &src.ID, "Shared", "folder")
	leaf := env.mustCreate(t, "alice", &sub.ID, "Leaf", "document")
	env.mustShare(t, "alice", sub.ID, "bob", models.PermissionWrite)

	result, err := env.items.MoveMany(ctx, "alice", &services.MoveRequest{
		ItemIDs:     []string{sub.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	// Bob's grant followed the subtree without any membership row changing
	// identity.
	movedLeaf, err := env.items.Get(ctx, "bob", leaf.ID)
	require.NoError(t, err)
	perm, ok, err := env.resolver.Resolve(ctx, "bob", movedLeaf.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PermissionWrite, perm)
}

func TestMoveRequiresAdminOnTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Source", "folder")
	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	sub := env.mustCreate(t, "alice", &src.ID, "Sub", "folder")
	env.mustShare(t, "alice", src.ID, "bob", models.PermissionWrite)
	env.mustShare(t, "alice", dst.ID, "bob", models.PermissionWrite)

	result, err := env.items.MoveMany(ctx, "bob", &services.MoveRequest{
		ItemIDs:     []string{sub.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "access_denied", result.Failed[0].Kind)
}

func TestMoveBatchPartitionsOutcome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	good := env.mustCreate(t, "alice", nil, "Good", "folder")

	result, err := env.items.MoveMany(ctx, "alice", &services.MoveRequest{
		ItemIDs:     []string{good.ID, "no-such-item"},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, good.ID, result.Succeeded[0].ID)
	assert.Equal(t, "no-such-item", result.Failed[0].ItemID)
	assert.Equal(t, "not_found", result.Failed[0].Kind)
}

func TestMovePlacesAfterPreviousSibling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	first := env.mustCreate(t, "alice", &dst.ID, "First", "document")
	second := env.mustCreate(t, "alice", &dst.ID, "Second", "document")
	loose := env.mustCreate(t, "alice", nil, "Loose", "folder")

	result, err := env.items.MoveMany(ctx, "alice", &services.MoveRequest{
		ItemIDs:           []string{loose.ID},
		NewParentID:       &dst.ID,
		PreviousSiblingID: &first.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	children, err := env.items.GetChildren(ctx, "alice", dst.ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, []string{first.ID, loose.ID, second.ID},
		[]string{children[0].ID, children[1].ID, children[2].ID})
}

func TestMoveWithinParentRepositionsWithHint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dst := env.mustCreate(t, "alice", nil, "Folder", "folder")
	b := env.mustCreate(t, "alice", &dst.ID, "B", "document")
	c := env.mustCreate(t, "alice", &dst.ID, "C", "document")
	d := env.mustCreate(t, "alice", &dst.ID, "D", "document")

	// Destination equals the current parent: the path stays put but the
	// sibling hint still repositions the item.
	result, err := env.items.MoveMany(ctx, "alice", &services.MoveRequest{
		ItemIDs:           []string{b.ID},
		NewParentID:       &dst.ID,
		PreviousSiblingID: &c.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	assert.Equal(t, b.Path, result.Succeeded[0].Path)

	children, err := env.items.GetChildren(ctx, "alice", dst.ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, []string{c.ID, b.ID, d.ID},
		[]string{children[0].ID, children[1].ID, children[2].ID})
}
