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

// VisibilityRepository is the in-memory VisibilityRepository implementation.
type VisibilityRepository struct {
	store *Store
}

// NewVisibilityRepository creates a visibility repository over the store.
func NewVisibilityRepository(store *Store) repositories.VisibilityRepository {
	return &VisibilityRepository{store: store}
}

func (r *VisibilityRepository) GetAtPaths(ctx context.Context, paths []string) ([]models.ItemVisibility, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	pathSet := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		pathSet[p] = struct{}{}
	}

	var result []models.ItemVisibility
	for _, v := range r.store.visibilities {
		if _, ok := pathSet[v.ItemPath]; ok {
			result = append(result, v)
		}
	}
	return result, nil
}

func (r *VisibilityRepository) GetByPathAndType(ctx context.Context, path string, visType models.VisibilityType) (*models.ItemVisibility, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, v := range r.store.visibilities {
		if v.ItemPath == path && v.Type == visType {
			found := v
			return &found, nil
		}
	}
	return nil, nil
}

func (r *VisibilityRepository) GetBelowPath(ctx context.Context, path string) ([]models.ItemVisibility, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []models.ItemVisibility
	for _, v := range r.store.visibilities {
		if itempath.IsDescendant(v.ItemPath, path) {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ItemPath < result[j].ItemPath
	})
	return result, nil
}

func (r *VisibilityRepository) Insert(ctx context.Context, visibility *models.ItemVisibility) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, v := range r.store.visibilities {
		if v.ItemPath == visibility.ItemPath && v.Type == visibility.Type {
			return fmt.Errorf("visibility %s at %s: %w", visibility.Type, visibility.ItemPath, domain.ErrConflict)
		}
	}
	r.store.visibilities[visibility.ID] = *visibility
	return nil
}

func (r *VisibilityRepository) InsertMany(ctx context.Context, visibilities []models.ItemVisibility) error {
	for i := range visibilities {
		if err := r.Insert(ctx, &visibilities[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *VisibilityRepository) Delete(ctx context.Context, path string, visType models.VisibilityType) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, v := range r.store.visibilities {
		if v.ItemPath == path && v.Type == visType {
			delete(r.store.visibilities, id)
			return nil
		}
	}
	return fmt.Errorf("visibility %s at %s: %w", visType, path, domain.ErrNotFound)
}
