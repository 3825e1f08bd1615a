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

// ItemRepository is the in-memory ItemRepository implementation.
type ItemRepository struct {
	store *Store
}

// NewItemRepository creates an item repository over the store.
func NewItemRepository(store *Store) repositories.ItemRepository {
	return &ItemRepository{store: store}
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	clone := cloneItem(item)
	return &clone, nil
}

func (r *ItemRepository) GetManyByID(ctx context.Context, ids []string) ([]models.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var items []models.Item
	for _, id := range ids {
		if item, ok := r.store.items[id]; ok {
			items = append(items, cloneItem(item))
		}
	}
	return items, nil
}

func (r *ItemRepository) GetChildren(ctx context.Context, parentPath string, includeRecycled bool) ([]models.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var children []models.Item
	for _, item := range r.store.items {
		parent, ok := itempath.Parent(item.Path)
		if !ok || parent != parentPath {
			continue
		}
		if !includeRecycled && item.DeletedAt != nil {
			continue
		}
		children = append(children, cloneItem(item))
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].OrderKey < children[j].OrderKey
	})
	return children, nil
}

func (r *ItemRepository) GetDescendants(ctx context.Context, path string, opts repositories.DescendantOptions) ([]models.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	typeSet := make(map[string]struct{}, len(opts.Types))
	for _, t := range opts.Types {
		typeSet[t] = struct{}{}
	}

	var descendants []models.Item
	for _, item := range r.store.items {
		if item.Path == path || !itempath.IsDescendant(item.Path, path) {
			continue
		}
		if !opts.IncludeRecycled && item.DeletedAt != nil {
			continue
		}
		if len(typeSet) > 0 {
			if _, ok := typeSet[item.Type]; !ok {
				continue
			}
		}
		descendants = append(descendants, cloneItem(item))
	}
	if opts.Ordered {
		sort.Slice(descendants, func(i, j int) bool {
			di, dj := itempath.Depth(descendants[i].Path), itempath.Depth(descendants[j].Path)
			if di != dj {
				return di < dj
			}
			return descendants[i].OrderKey < descendants[j].OrderKey
		})
	}
	return descendants, nil
}

func (r *ItemRepository) GetAncestorChain(ctx context.Context, path string) ([]models.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	prefixSet := make(map[string]struct{})
	for _, p := range itempath.Ancestors(path) {
		prefixSet[p] = struct{}{}
	}

	var chain []models.Item
	for _, item := range r.store.items {
		if _, ok := prefixSet[item.Path]; ok {
			chain = append(chain, cloneItem(item))
		}
	}
	sort.Slice(chain, func(i, j int) bool {
		return itempath.Depth(chain[i].Path) < itempath.Depth(chain[j].Path)
	})
	return chain, nil
}

func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.items[item.ID]; exists {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrConflict)
	}
	for _, existing := range r.store.items {
		if existing.Path == item.Path {
			return fmt.Errorf("path %s: %w", item.Path, domain.ErrConflict)
		}
	}
	r.store.items[item.ID] = cloneItem(*item)
	return nil
}

func (r *ItemRepository) InsertMany(ctx context.Context, items []models.Item) error {
	for i := range items {
		if err := r.Insert(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.items[item.ID]
	if !ok {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
	}
	existing.Name = item.Name
	existing.Extra = cloneItem(*item).Extra
	existing.UpdatedAt = item.UpdatedAt
	r.store.items[item.ID] = existing
	return nil
}

func (r *ItemRepository) UpdateOrderKey(ctx context.Context, id, orderKey string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.items[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	existing.OrderKey = orderKey
	existing.UpdatedAt = time.Now()
	r.store.items[id] = existing
	return nil
}

func (r *ItemRepository) UpdateOrderKeys(ctx context.Context, assignments []repositories.OrderKeyAssignment) error {
	for _, a := range assignments {
		if err := r.UpdateOrderKey(ctx, a.ItemID, a.OrderKey); err != nil {
			return err
		}
	}
	return nil
}

// RewritePrefix re-roots the subtree and, like the SQL layer's ON UPDATE
// CASCADE foreign keys, rewrites the item_path of memberships and
// visibilities attached anywhere under the old prefix.
func (r *ItemRepository) RewritePrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for id, item := range r.store.items {
		if !itempath.IsDescendant(item.Path, oldPrefix) {
			continue
		}
		rewritten, err := itempath.RewritePrefix(item.Path, oldPrefix, newPrefix)
		if err != nil {
			return count, err
		}
		item.Path = rewritten
		r.store.items[id] = item
		count++
	}
	for id, m := range r.store.memberships {
		if !itempath.IsDescendant(m.ItemPath, oldPrefix) {
			continue
		}
		rewritten, err := itempath.RewritePrefix(m.ItemPath, oldPrefix, newPrefix)
		if err != nil {
			return count, err
		}
		m.ItemPath = rewritten
		r.store.memberships[id] = m
	}
	for id, v := range r.store.visibilities {
		if !itempath.IsDescendant(v.ItemPath, oldPrefix) {
			continue
		}
		rewritten, err := itempath.RewritePrefix(v.ItemPath, oldPrefix, newPrefix)
		if err != nil {
			return count, err
		}
		v.ItemPath = rewritten
		r.store.visibilities[id] = v
	}
	return count, nil
}

func (r *ItemRepository) MarkRecycledByPrefix(ctx context.Context, prefix string, deletedAt time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for id, item := range r.store.items {
		if !itempath.IsDescendant(item.Path, prefix) || item.DeletedAt != nil {
			continue
		}
		t := deletedAt
		item.DeletedAt = &t
		r.store.items[id] = item
		count++
	}
	return count, nil
}

func (r *ItemRepository) ClearRecycledByPrefix(ctx context.Context, prefix string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for id, item := range r.store.items {
		if !itempath.IsDescendant(item.Path, prefix) || item.DeletedAt == nil {
			continue
		}
		item.DeletedAt = nil
		r.store.items[id] = item
		count++
	}
	return count, nil
}
