package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/itempath"
)

// MembershipRepository is the in-memory MembershipRepository implementation.
type MembershipRepository struct {
	store *Store
}

// NewMembershipRepository creates a membership repository over the store.
func NewMembershipRepository(store *Store) repositories.MembershipRepository {
	return &MembershipRepository{store: store}
}

func (r *MembershipRepository) GetByID(ctx context.Context, id string) (*models.ItemMembership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.memberships[id]
	if !ok {
		return nil, fmt.Errorf("membership %s: %w", id, domain.ErrNotFound)
	}
	return &m, nil
}

func (r *MembershipRepository) GetForAccountAtPaths(ctx context.Context, accountID string, paths []string) ([]models.ItemMembership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pathSet := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		pathSet[p] = struct{}{}
	}

	var result []models.ItemMembership
	for _, m := range r.store.memberships {
		if m.AccountID != accountID {
			continue
		}
		if _, ok := pathSet[m.ItemPath]; ok {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *MembershipRepository) GetByAccountAndPath(ctx context.Context, accountID, path string) (*models.ItemMembership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, m := range r.store.memberships {
		if m.AccountID == accountID && m.ItemPath == path {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MembershipRepository) GetBelowPath(ctx context.Context, path string) ([]models.ItemMembership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []models.ItemMembership
	for _, m := range r.store.memberships {
		if itempath.IsDescendant(m.ItemPath, path) {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ItemPath < result[j].ItemPath
	})
	return result, nil
}

func (r *MembershipRepository) Insert(ctx context.Context, membership *models.ItemMembership) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.memberships[membership.ID]; exists {
		return fmt.Errorf("membership %s: %w", membership.ID, domain.ErrConflict)
	}
	for _, m := range r.store.memberships {
		if m.AccountID == membership.AccountID && m.ItemPath == membership.ItemPath {
			return fmt.Errorf("membership for account %s at %s: %w", membership.AccountID, membership.ItemPath, domain.ErrConflict)
		}
	}
	r.store.memberships[membership.ID] = *membership
	return nil
}

func (r *MembershipRepository) InsertMany(ctx context.Context, memberships []models.ItemMembership) error {
	for i := range memberships {
		if err := r.Insert(ctx, &memberships[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *MembershipRepository) UpdatePermission(ctx context.Context, id string, permission models.Permission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m, ok := r.store.memberships[id]
	if !ok {
		return fmt.Errorf("membership %s: %w", id, domain.ErrNotFound)
	}
	m.Permission = permission
	m.UpdatedAt = time.Now()
	r.store.memberships[id] = m
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.memberships[id]; !ok {
		return fmt.Errorf("membership %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.memberships, id)
	return nil
}
