package service

import (
	"context"
	"fmt"
	"log/slog"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/domain/services"
	"arbor/internal/itempath"
)

type permissionResolver struct {
	membershipRepo repositories.MembershipRepository
	visibilityRepo repositories.VisibilityRepository
	logger         *slog.Logger
}

// NewPermissionResolver creates a new permission resolver
func NewPermissionResolver(
	membershipRepo repositories.MembershipRepository,
	visibilityRepo repositories.VisibilityRepository,
	logger *slog.Logger,
) services.PermissionResolver {
	return &permissionResolver{
		membershipRepo: membershipRepo,
		visibilityRepo: visibilityRepo,
		logger:         logger,
	}
}

// Resolve walks the ancestor chain from the item upward and returns the
// permission of the closest prefix that carries any grant for the account.
// Grants further up the chain are shadowed, not merged. When several grants
// sit at the winning prefix the highest one wins.
func (r *permissionResolver) Resolve(ctx context.Context, accountID, itemPath string) (models.Permission, bool, error) {
	prefixes := itempath.Ancestors(itemPath)
	memberships, err := r.membershipRepo.GetForAccountAtPaths(ctx, accountID, prefixes)
	if err != nil {
		return "", false, fmt.Errorf("resolving permission at %s: %w", itemPath, err)
	}
	if len(memberships) == 0 {
		return "", false, nil
	}

	byPath := make(map[string]models.Permission, len(memberships))
	for _, m := range memberships {
		if current, ok := byPath[m.ItemPath]; !ok || m.Permission.Level() > current.Level() {
			byPath[m.ItemPath] = m.Permission
		}
	}

	// prefixes are ordered closest-first, so the first hit is the nearest
	// grant.
	for _, prefix := range prefixes {
		if perm, ok := byPath[prefix]; ok {
			return perm, true, nil
		}
	}
	return "", false, nil
}

// ResolveVisibility collects the visibility types set anywhere on the
// ancestor chain. Hidden and public both inherit downward.
func (r *permissionResolver) ResolveVisibility(ctx context.Context, itemPath string) (map[models.VisibilityType]bool, error) {
	prefixes := itempath.Ancestors(itemPath)
	visibilities, err := r.visibilityRepo.GetAtPaths(ctx, prefixes)
	if err != nil {
		return nil, fmt.Errorf("resolving visibility at %s: %w", itemPath, err)
	}

	effective := make(map[models.VisibilityType]bool, 2)
	for _, v := range visibilities {
		effective[v.Type] = true
	}
	return effective, nil
}

type authorizationGate struct {
	resolver services.PermissionResolver
	logger   *slog.Logger
}

// NewAuthorizationGate creates a new authorization gate
func NewAuthorizationGate(resolver services.PermissionResolver, logger *slog.Logger) services.AuthorizationGate {
	return &authorizationGate{
		resolver: resolver,
		logger:   logger,
	}
}

func (g *authorizationGate) Require(ctx context.Context, accountID, itemPath string, required models.Permission) error {
	perm, ok, err := g.resolver.Resolve(ctx, accountID, itemPath)
	if err != nil {
		return err
	}
	if !ok || !perm.AtLeast(required) {
		g.logger.Debug("permission check failed",
			"account_id", accountID,
			"path", itemPath,
			"required", required,
		)
		return fmt.Errorf("%s required: %w", required, domain.ErrAccessDenied)
	}
	return nil
}

// RequireRead grants read when the account holds a membership of any level,
// or when the subtree is public. A hidden subtree stays readable only for
// accounts resolving to write or above.
func (g *authorizationGate) RequireRead(ctx context.Context, accountID, itemPath string) error {
	perm, hasGrant, err := g.resolver.Resolve(ctx, accountID, itemPath)
	if err != nil {
		return err
	}

	visibility, err := g.resolver.ResolveVisibility(ctx, itemPath)
	if err != nil {
		return err
	}

	if visibility[models.VisibilityHidden] {
		if hasGrant && perm.AtLeast(models.PermissionWrite) {
			return nil
		}
		return fmt.Errorf("item is hidden: %w", domain.ErrAccessDenied)
	}

	if hasGrant && perm.AtLeast(models.PermissionRead) {
		return nil
	}
	if visibility[models.VisibilityPublic] {
		return nil
	}
	return fmt.Errorf("read required: %w", domain.ErrAccessDenied)
}
