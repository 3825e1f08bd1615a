package models

// TargetError records the failure of one target in a batch operation.
type TargetError struct {
	ItemID string `json:"item_id"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// BatchResult partitions a batch operation's outcome per target. One
// target's failure never aborts the others; callers always receive the full
// partition, never a single boolean.
type BatchResult struct {
	Succeeded []Item        `json:"succeeded"`
	Failed    []TargetError `json:"failed"`
}
