package memory

import (
	"context"
	"fmt"
	"sort"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/itempath"
)

// RecycledItemRepository is the in-memory RecycledItemRepository
// implementation.
type RecycledItemRepository struct {
	store *Store
}

// NewRecycledItemRepository creates a recycled-item repository over the
// store.
func NewRecycledItemRepository(store *Store) repositories.RecycledItemRepository {
	return &RecycledItemRepository{store: store}
}

func (r *RecycledItemRepository) GetByItemID(ctx context.Context, itemID string) (*models.RecycledItemData, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.recycled[itemID]
	if !ok {
		return nil, fmt.Errorf("recycled item %s: %w", itemID, domain.ErrNotFound)
	}
	return &rec, nil
}

func (r *RecycledItemRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.RecycledItemData, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var records []models.RecycledItemData
	for _, rec := range r.store.recycled {
		if rec.CreatorID == creatorID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (r *RecycledItemRepository) Insert(ctx context.Context, recycled *models.RecycledItemData) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.recycled[recycled.ItemID]; exists {
		return fmt.Errorf("recycled item %s: %w", recycled.ItemID, domain.ErrConflict)
	}
	r.store.recycled[recycled.ItemID] = *recycled
	return nil
}

func (r *RecycledItemRepository) DeleteByPathPrefix(ctx context.Context, path string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for itemID := range r.store.recycled {
		item, ok := r.store.items[itemID]
		if !ok {
			continue
		}
		if itempath.IsDescendant(item.Path, path) {
			delete(r.store.recycled, itemID)
			count++
		}
	}
	return count, nil
}
