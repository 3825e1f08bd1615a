package models

import "time"

// Permission is the level granted by a membership. Levels are totally
// ordered: Admin > Write > Read.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// Level returns the numeric rank of the permission for comparisons.
// Unknown permissions rank below Read.
func (p Permission) Level() int {
	switch p {
	case PermissionRead:
		return 1
	case PermissionWrite:
		return 2
	case PermissionAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether p grants everything required does.
func (p Permission) AtLeast(required Permission) bool {
	return p.Level() >= required.Level()
}

// Valid reports whether p is one of the known permission levels.
func (p Permission) Valid() bool {
	return p.Level() > 0
}

// ItemMembership grants an account a permission over the subtree rooted at
// ItemPath. Grants attach to the path, not the id: a single row governs the
// whole subtree via prefix matching, and a subtree move re-roots the grant
// without touching the row.
type ItemMembership struct {
	ID         string     `json:"id" db:"id"`
	AccountID  string     `json:"account_id" db:"account_id"`
	ItemPath   string     `json:"item_path" db:"item_path"`
	Permission Permission `json:"permission" db:"permission"`
	CreatorID  string     `json:"creator_id" db:"creator_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// ShareItemRequest carries the input for granting a membership.
type ShareItemRequest struct {
	AccountID  string     `json:"account_id"`
	Permission Permission `json:"permission"`
}

// UpdateMembershipRequest carries the input for a permission change.
type UpdateMembershipRequest struct {
	Permission Permission `json:"permission"`
}
