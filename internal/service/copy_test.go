package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
)

func TestCopyProducesDisjointIDSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Source", "folder")
	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	sub := env.mustCreate(t, "alice", &src.ID, "Sub", "folder")
	env.mustCreate(t, "alice", &sub.ID, "One", "document")
	env.mustCreate(t, "alice", &sub.ID, "Two", "document")

	originals, err := env.items.GetDescendants(ctx, "alice", sub.ID)
	require.NoError(t, err)
	originalIDs := map[string]struct{}{sub.ID: {}}
	for _, item := range originals {
		originalIDs[item.ID] = struct{}{}
	}

	result, err := env.items.CopyMany(ctx, "alice", &services.CopyRequest{
		ItemIDs:     []string{sub.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	require.Len(t, result.Succeeded, 1)
	copyRoot := result.Succeeded[0]

	copied, err := env.items.GetDescendants(ctx, "alice", copyRoot.ID)
	require.NoError(t, err)
	// Root included on both sides: counts match.
	assert.Len(t, copied, len(originals))

	_, clash := originalIDs[copyRoot.ID]
	assert.False(t, clash)
	for _, item := range copied {
		_, clash := originalIDs[item.ID]
		assert.False(t, clash, "copied item %s reuses an original id", item.ID)
	}

	// The original subtree is untouched.
	after, err := env.items.GetDescendants(ctx, "alice", sub.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(originals))
}

func TestCopyClonesMembershipsAtSameLevel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Source", "folder")
	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	sub := env.mustCreate(t, "alice", &src.ID, "Shared", "folder")
	inner := env.mustCreate(t, "alice", &sub.ID, "Inner", "folder")
	env.mustShare(t, "alice", sub.ID, "bob", models.PermissionWrite)
	env.mustShare(t, "alice", inner.ID, "carol", models.PermissionRead)

	result, err := env.items.CopyMany(ctx, "alice", &services.CopyRequest{
		ItemIDs:     []string{sub.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	copyRoot := result.Succeeded[0]

	perm, ok, err := env.resolver.Resolve(ctx, "bob", copyRoot.Path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PermissionWrite, perm)

	cloned, err := env.memberships.ListBelow(ctx, "alice", copyRoot.ID)
	require.NoError(t, err)
	require.Len(t, cloned, 2)
	for _, m := range cloned {
		assert.Equal(t, "alice", m.CreatorID, "copies are stamped with the acting account")
	}
}

func TestCopyRewritesShortcutTargetsInsideSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Source", "folder")
	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	outside := env.mustCreate(t, "alice", nil, "Outside", "document")
	doc := env.mustCreate(t, "alice", &src.ID, "Doc", "document")

	internalShortcut, err := env.items.Create(ctx, "alice", &models.CreateItemRequest{
		ParentID: &src.ID,
		Name:     "To Doc",
		Type:     "shortcut",
		Extra:    map[string]interface{}{"target": doc.ID},
	})
	require.NoError(t, err)
	externalShortcut, err := env.items.Create(ctx, "alice", &models.CreateItemRequest{
		ParentID: &src.ID,
		Name:     "To Outside",
		Type:     "shortcut",
		Extra:    map[string]interface{}{"target": outside.ID},
	})
	require.NoError(t, err)

	result, err := env.items.CopyMany(ctx, "alice", &services.CopyRequest{
		ItemIDs:     []string{src.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	copied, err := env.items.GetDescendants(ctx, "alice", result.Succeeded[0].ID)
	require.NoError(t, err)

	var copiedDocID string
	for _, item := range copied {
		if item.Name == "Doc" {
			copiedDocID = item.ID
		}
	}
	require.NotEmpty(t, copiedDocID)

	for _, item := range copied {
		switch item.Name {
		case internalShortcut.Name:
			assert.Equal(t, copiedDocID, item.Extra["target"],
				"shortcut into the subtree must point at the copy")
		case externalShortcut.Name:
			assert.Equal(t, outside.ID, item.Extra["target"],
				"shortcut out of the subtree must keep its original target")
		}
	}
}

func TestCopyPreservesChildOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Source", "folder")
	dst := env.mustCreate(t, "alice", nil, "Destination", "folder")
	env.mustCreate(t, "alice", &src.ID, "Alpha", "document")
	env.mustCreate(t, "alice", &src.ID, "Beta", "document")
	env.mustCreate(t, "alice", &src.ID, "Gamma", "document")

	result, err := env.items.CopyMany(ctx, "alice", &services.CopyRequest{
		ItemIDs:     []string{src.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)

	children, err := env.items.GetChildren(ctx, "alice", result.Succeeded[0].ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"},
		[]string{children[0].Name, children[1].Name, children[2].Name})
}

func TestCopyRequiresReadOnSource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := env.mustCreate(t, "alice", nil, "Private", "folder")
	dst := env.mustCreate(t, "bob", nil, "Mine", "folder")

	result, err := env.items.CopyMany(ctx, "bob", &services.CopyRequest{
		ItemIDs:     []string{src.ID},
		NewParentID: &dst.ID,
	})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "access_denied", result.Failed[0].Kind)
}
