package config

const (
	// MaxItemNameLength is the maximum length for item names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxItemNameLength = 255

	// MaxPathDepth is the maximum nesting depth of the tree. Deeper
	// hierarchies indicate an anti-pattern and make every inherited
	// permission check proportionally slower.
	MaxPathDepth = 32

	// MaxBatchTargets caps the number of target items accepted by a single
	// bulk move/copy/recycle/restore request. Each target is its own
	// transaction; unbounded batches would let one request monopolize the
	// pool.
	MaxBatchTargets = 50
)
