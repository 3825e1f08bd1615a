package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/services"
)

func TestReorderBeforeFirstSibling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mustCreate(t, "alice", nil, "A", "folder")
	b := env.mustCreate(t, "alice", &a.ID, "B", "document")
	c := env.mustCreate(t, "alice", &a.ID, "C", "document")

	// Nil previous sibling moves to the front.
	_, err := env.items.Reorder(ctx, "alice", c.ID, &services.ReorderRequest{})
	require.NoError(t, err)

	children, err := env.items.GetChildren(ctx, "alice", a.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, []string{c.ID, b.ID}, []string{children[0].ID, children[1].ID})
}

func TestReorderAfterNamedSibling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.mustCreate(t, "alice", nil, "Parent", "folder")
	a := env.mustCreate(t, "alice", &parent.ID, "A", "document")
	b := env.mustCreate(t, "alice", &parent.ID, "B", "document")
	c := env.mustCreate(t, "alice", &parent.ID, "C", "document")

	_, err := env.items.Reorder(ctx, "alice", a.ID, &services.ReorderRequest{PreviousSiblingID: &b.ID})
	require.NoError(t, err)

	children, err := env.items.GetChildren(ctx, "alice", parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, []string{b.ID, a.ID, c.ID},
		[]string{children[0].ID, children[1].ID, children[2].ID})
}

func TestReorderRejectsForeignSibling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.mustCreate(t, "alice", nil, "Parent", "folder")
	other := env.mustCreate(t, "alice", nil, "Other", "folder")
	a := env.mustCreate(t, "alice", &parent.ID, "A", "document")
	stranger := env.mustCreate(t, "alice", &other.ID, "Stranger", "document")

	_, err := env.items.Reorder(ctx, "alice", a.ID, &services.ReorderRequest{PreviousSiblingID: &stranger.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReorderRootItemRejected(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreate(t, "alice", nil, "Root", "folder")
	_, err := env.items.Reorder(context.Background(), "alice", root.ID, &services.ReorderRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReorderRequiresWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parent := env.mustCreate(t, "alice", nil, "Parent", "folder")
	a := env.mustCreate(t, "alice", &parent.ID, "A", "document")
	env.mustShare(t, "alice", parent.ID, "bob", models.PermissionRead)

	_, err := env.items.Reorder(ctx, "bob", a.ID, &services.ReorderRequest{})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}
