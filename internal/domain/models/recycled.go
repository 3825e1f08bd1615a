package models

import "time"

// RecycledItemData marks a recycle root: the top-level item of a recycled
// subtree. Descendants are identified implicitly by path prefix rather than
// individually recorded, so "list my trash" never scans by path.
type RecycledItemData struct {
	ID        string    `json:"id" db:"id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	CreatorID string    `json:"creator_id" db:"creator_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TrashEntry pairs a recycle root record with the item it points to, for
// trash listings.
type TrashEntry struct {
	Recycled RecycledItemData `json:"recycled"`
	Item     Item             `json:"item"`
}
