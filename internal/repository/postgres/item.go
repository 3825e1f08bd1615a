package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
	"arbor/internal/itempath"
)

// itemColumns is the scan list shared by every item query.
const itemColumns = `id, name, type, COALESCE(extra, '{}'::jsonb), path, order_key, creator_id, created_at, updated_at, deleted_at`

// depthExpr sorts by materialized-path depth without a recursive walk.
const depthExpr = `(length(path) - length(replace(path, '.', '')))`

// PostgresItemRepository implements the ItemRepository interface
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *RepositoryConfig) repositories.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByID retrieves an item by ID, recycled or not.
func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, itemColumns, r.tables.Items)

	item, err := scanItem(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetManyByID retrieves a set of items by id. Missing ids are simply absent
// from the result; callers decide whether that is an error.
func (r *PostgresItemRepository) GetManyByID(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = ANY($1)
	`, itemColumns, r.tables.Items)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetChildren lists direct children of parentPath ordered by order key.
func (r *PostgresItemRepository) GetChildren(ctx context.Context, parentPath string, includeRecycled bool) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE path LIKE $1 || '.%%' AND path NOT LIKE $1 || '.%%.%%'
	`, itemColumns, r.tables.Items)
	if !includeRecycled {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY order_key ASC`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, parentPath)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetDescendants lists the proper descendants of path in one prefix query.
func (r *PostgresItemRepository) GetDescendants(ctx context.Context, path string, opts repositories.DescendantOptions) ([]models.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE path LIKE $1 || '.%%'
	`, itemColumns, r.tables.Items)

	args := []interface{}{path}
	if !opts.IncludeRecycled {
		query += ` AND deleted_at IS NULL`
	}
	if len(opts.Types) > 0 {
		args = append(args, opts.Types)
		query += fmt.Sprintf(` AND type = ANY($%d)`, len(args))
	}
	if opts.Ordered {
		query += fmt.Sprintf(` ORDER BY %s ASC, order_key ASC`, depthExpr)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list descendants: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetAncestorChain fetches every ancestor-or-self of path in a single
// indexed lookup over the precomputed prefix list, root first.
func (r *PostgresItemRepository) GetAncestorChain(ctx context.Context, path string) ([]models.Item, error) {
	prefixes := itempath.Ancestors(path)
	if len(prefixes) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE path = ANY($1)
		ORDER BY %s ASC
	`, itemColumns, r.tables.Items, depthExpr)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, prefixes)
	if err != nil {
		return nil, fmt.Errorf("get ancestor chain: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Insert creates a new item row.
func (r *PostgresItemRepository) Insert(ctx context.Context, item *models.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, type, extra, path, order_key, creator_id, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Items)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		item.ID,
		item.Name,
		item.Type,
		item.Extra,
		item.Path,
		item.OrderKey,
		item.CreatorID,
		item.CreatedAt,
		item.UpdatedAt,
		item.DeletedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("item %s: %w", item.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// InsertMany creates many item rows in one batched round trip. Used by the
// copy engine, which prepares the full clone before writing any row.
func (r *PostgresItemRepository) InsertMany(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, type, extra, path, order_key, creator_id, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Items)

	batch := &pgx.Batch{}
	for i := range items {
		item := &items[i]
		batch.Queue(query,
			item.ID,
			item.Name,
			item.Type,
			item.Extra,
			item.Path,
			item.OrderKey,
			item.CreatorID,
			item.CreatedAt,
			item.UpdatedAt,
			item.DeletedAt,
		)
	}

	results := GetExecutor(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			if isPgDuplicateError(err) {
				return fmt.Errorf("insert items: %w", domain.ErrConflict)
			}
			return fmt.Errorf("insert items: %w", err)
		}
	}
	return nil
}

// Update rewrites the mutable properties of a single row.
func (r *PostgresItemRepository) Update(ctx context.Context, item *models.Item) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, extra = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Items)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		item.Name,
		item.Extra,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateOrderKey rewrites the order key of a single row.
func (r *PostgresItemRepository) UpdateOrderKey(ctx context.Context, id, orderKey string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET order_key = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Items)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, orderKey, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update order key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateOrderKeys applies a rescale plan in one batched round trip.
func (r *PostgresItemRepository) UpdateOrderKeys(ctx context.Context, assignments []repositories.OrderKeyAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET order_key = $1
		WHERE id = $2
	`, r.tables.Items)

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(query, a.OrderKey, a.ItemID)
	}

	results := GetExecutor(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()
	for range assignments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("update order keys: %w", err)
		}
	}
	return nil
}

// RewritePrefix re-roots the subtree at oldPrefix under newPrefix in a
// single statement. Membership and visibility rows follow automatically via
// ON UPDATE CASCADE on their item_path foreign keys, which is what makes
// move O(1) for access-control bookkeeping.
func (r *PostgresItemRepository) RewritePrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET path = $2 || substr(path, length($1) + 1)
		WHERE path = $1 OR path LIKE $1 || '.%%'
	`, r.tables.Items)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, oldPrefix, newPrefix)
	if err != nil {
		if isPgDuplicateError(err) {
			return 0, fmt.Errorf("rewrite paths: %w", domain.ErrConflict)
		}
		return 0, fmt.Errorf("rewrite paths: %w", err)
	}
	return result.RowsAffected(), nil
}

// MarkRecycledByPrefix stamps deleted_at on every live row of the subtree.
func (r *PostgresItemRepository) MarkRecycledByPrefix(ctx context.Context, prefix string, deletedAt time.Time) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $2
		WHERE (path = $1 OR path LIKE $1 || '.%%') AND deleted_at IS NULL
	`, r.tables.Items)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, prefix, deletedAt)
	if err != nil {
		return 0, fmt.Errorf("recycle subtree: %w", err)
	}
	return result.RowsAffected(), nil
}

// ClearRecycledByPrefix clears deleted_at on every recycled row of the
// subtree.
func (r *PostgresItemRepository) ClearRecycledByPrefix(ctx context.Context, prefix string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NULL
		WHERE (path = $1 OR path LIKE $1 || '.%%') AND deleted_at IS NOT NULL
	`, r.tables.Items)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, prefix)
	if err != nil {
		return 0, fmt.Errorf("restore subtree: %w", err)
	}
	return result.RowsAffected(), nil
}

// scanItem reads one item row.
func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Type,
		&item.Extra,
		&item.Path,
		&item.OrderKey,
		&item.CreatorID,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// collectItems drains an item result set.
func collectItems(rows pgx.Rows) ([]models.Item, error) {
	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
