package models

import "time"

// VisibilityType is a flag attached to a subtree root. Hidden is the most
// restrictive attribute and dominates when resolving effective access for
// non-privileged actors; Public opens read access to any account.
type VisibilityType string

const (
	VisibilityHidden VisibilityType = "hidden"
	VisibilityPublic VisibilityType = "public"
)

// Valid reports whether t is a known visibility type.
func (t VisibilityType) Valid() bool {
	return t == VisibilityHidden || t == VisibilityPublic
}

// ItemVisibility attaches a visibility flag to the subtree rooted at
// ItemPath. Like memberships, visibilities are keyed by path so that one row
// governs the whole subtree and survives moves untouched.
type ItemVisibility struct {
	ID        string         `json:"id" db:"id"`
	ItemPath  string         `json:"item_path" db:"item_path"`
	Type      VisibilityType `json:"type" db:"type"`
	CreatorID string         `json:"creator_id" db:"creator_id"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// SetVisibilityRequest carries the input for setting a visibility flag.
type SetVisibilityRequest struct {
	Type VisibilityType `json:"type"`
}
