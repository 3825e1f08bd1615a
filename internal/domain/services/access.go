package services

import (
	"context"

	"arbor/internal/domain/models"
)

// PermissionResolver computes the effective permission an account holds on
// an item, and the item's effective visibility flags, by nearest-ancestor-
// or-self resolution over the materialized path.
type PermissionResolver interface {
	// Resolve returns the account's effective permission at itemPath. The
	// closest prefix carrying at least one grant wins outright; ok is false
	// when no prefix carries a grant.
	Resolve(ctx context.Context, accountID, itemPath string) (permission models.Permission, ok bool, err error)

	// ResolveVisibility returns the set of visibility types effective at
	// itemPath. Hidden is monotone: once set at an ancestor it applies to
	// every descendant.
	ResolveVisibility(ctx context.Context, itemPath string) (map[models.VisibilityType]bool, error)
}

// AuthorizationGate combines the resolver with a required-permission check.
// All mutation entry points go through it before touching the tree.
type AuthorizationGate interface {
	// Require fails with AccessDenied unless the account's resolved
	// permission at itemPath is at least required.
	Require(ctx context.Context, accountID, itemPath string, required models.Permission) error

	// RequireRead is Require(Read) extended with visibility rules: a Public
	// subtree is readable by any authenticated account, and Hidden blocks
	// actors whose resolved permission is below Write.
	RequireRead(ctx context.Context, accountID, itemPath string) error
}
