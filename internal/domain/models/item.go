package models

import (
	"time"

	"arbor/internal/itempath"
)

// Item is the central entity: one node of the shared content forest.
// The full ancestor chain is materialized in Path; ParentID is always
// derived from it and never stored independently.
type Item struct {
	ID        string                 `json:"id" db:"id"`
	Name      string                 `json:"name" db:"name"`
	Type      string                 `json:"type" db:"type"`
	Extra     map[string]interface{} `json:"extra,omitempty" db:"extra"` // type-specific payload, opaque to the core
	Path      string                 `json:"path" db:"path"`
	OrderKey  string                 `json:"order_key" db:"order_key"`
	CreatorID string                 `json:"creator_id" db:"creator_id"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time             `json:"deleted_at,omitempty" db:"deleted_at"` // non-nil marks the item recycled
}

// ParentID returns the id of the item's parent, derived from the path.
// Returns nil for root items.
func (i *Item) ParentID() *string {
	parent, ok := itempath.Parent(i.Path)
	if !ok {
		return nil
	}
	id := itempath.Last(parent)
	return &id
}

// IsRecycled reports whether the item is in the recycle bin (directly or
// as part of a recycled subtree).
func (i *Item) IsRecycled() bool {
	return i.DeletedAt != nil
}

// CreateItemRequest carries the input for item creation.
type CreateItemRequest struct {
	ParentID *string                `json:"parent_id,omitempty"`
	Name     string                 `json:"name"`
	Type     string                 `json:"type"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

// UpdateItemRequest carries the input for an in-place property update.
// Structural changes (move, reorder) have their own operations.
type UpdateItemRequest struct {
	Name  *string                `json:"name,omitempty"`
	Extra map[string]interface{} `json:"extra,omitempty"`
}
