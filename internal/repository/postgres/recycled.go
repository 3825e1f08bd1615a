package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arbor/internal/domain"
	"arbor/internal/domain/models"
	"arbor/internal/domain/repositories"
)

const recycledColumns = `id, item_id, creator_id, created_at`

// PostgresRecycledItemRepository implements the RecycledItemRepository
// interface
type PostgresRecycledItemRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRecycledItemRepository creates a new recycled-item repository
func NewRecycledItemRepository(config *RepositoryConfig) repositories.RecycledItemRepository {
	return &PostgresRecycledItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByItemID returns the recycle-root record for an item, if any.
func (r *PostgresRecycledItemRepository) GetByItemID(ctx context.Context, itemID string) (*models.RecycledItemData, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE item_id = $1
	`, recycledColumns, r.tables.Recycled)

	rec, err := scanRecycled(GetExecutor(ctx, r.pool).QueryRow(ctx, query, itemID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("recycled item %s: %w", itemID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get recycled item: %w", err)
	}
	return rec, nil
}

// ListByCreator lists an account's recycle roots, newest first.
func (r *PostgresRecycledItemRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.RecycledItemData, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE creator_id = $1
		ORDER BY created_at DESC
	`, recycledColumns, r.tables.Recycled)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list recycled items: %w", err)
	}
	defer rows.Close()

	var records []models.RecycledItemData
	for rows.Next() {
		rec, err := scanRecycled(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recycled item: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recycled items: %w", err)
	}
	return records, nil
}

// Insert creates a recycle-root record.
func (r *PostgresRecycledItemRepository) Insert(ctx context.Context, recycled *models.RecycledItemData) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, item_id, creator_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.Recycled)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		recycled.ID,
		recycled.ItemID,
		recycled.CreatorID,
		recycled.CreatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("recycled item %s: %w", recycled.ItemID, domain.ErrConflict)
		}
		return fmt.Errorf("insert recycled item: %w", err)
	}
	return nil
}

// DeleteByPathPrefix removes every recycle-root record whose item sits at
// or under the given path. Single statement so a restore never leaves a
// live item listed in the trash.
func (r *PostgresRecycledItemRepository) DeleteByPathPrefix(ctx context.Context, path string) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s r
		USING %s i
		WHERE i.id = r.item_id AND (i.path = $1 OR i.path LIKE $1 || '.%%')
	`, r.tables.Recycled, r.tables.Items)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, path)
	if err != nil {
		return 0, fmt.Errorf("delete recycled items under %s: %w", path, err)
	}
	return result.RowsAffected(), nil
}

func scanRecycled(row pgx.Row) (*models.RecycledItemData, error) {
	var rec models.RecycledItemData
	err := row.Scan(
		&rec.ID,
		&rec.ItemID,
		&rec.CreatorID,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
