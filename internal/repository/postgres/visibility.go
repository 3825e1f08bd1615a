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

const visibilityColumns = `id, item_path, type, creator_id, created_at`

// PostgresVisibilityRepository implements the VisibilityRepository interface
type PostgresVisibilityRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVisibilityRepository creates a new visibility repository
func NewVisibilityRepository(config *RepositoryConfig) repositories.VisibilityRepository {
	return &PostgresVisibilityRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetAtPaths fetches the flags on an exact prefix list in one round trip.
func (r *PostgresVisibilityRepository) GetAtPaths(ctx context.Context, paths []string) ([]models.ItemVisibility, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE item_path = ANY($1)
	`, visibilityColumns, r.tables.Visibilities)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, paths)
	if err != nil {
		return nil, fmt.Errorf("get visibilities at paths: %w", err)
	}
	defer rows.Close()

	return collectVisibilities(rows)
}

// GetByPathAndType returns the flag at exactly this path and type, if any.
func (r *PostgresVisibilityRepository) GetByPathAndType(ctx context.Context, path string, visType models.VisibilityType) (*models.ItemVisibility, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE item_path = $1 AND type = $2
	`, visibilityColumns, r.tables.Visibilities)

	v, err := scanVisibility(GetExecutor(ctx, r.pool).QueryRow(ctx, query, path, visType))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // no flag at this level, not an error
		}
		return nil, fmt.Errorf("get visibility: %w", err)
	}
	return v, nil
}

// GetBelowPath returns every flag attached at or under the prefix.
func (r *PostgresVisibilityRepository) GetBelowPath(ctx context.Context, path string) ([]models.ItemVisibility, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE item_path = $1 OR item_path LIKE $1 || '.%%'
		ORDER BY item_path ASC
	`, visibilityColumns, r.tables.Visibilities)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, path)
	if err != nil {
		return nil, fmt.Errorf("get visibilities below path: %w", err)
	}
	defer rows.Close()

	return collectVisibilities(rows)
}

// Insert creates a visibility row.
func (r *PostgresVisibilityRepository) Insert(ctx context.Context, visibility *models.ItemVisibility) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, item_path, type, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Visibilities)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		visibility.ID,
		visibility.ItemPath,
		visibility.Type,
		visibility.CreatorID,
		visibility.CreatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("visibility %s at %s: %w", visibility.Type, visibility.ItemPath, domain.ErrConflict)
		}
		return fmt.Errorf("insert visibility: %w", err)
	}
	return nil
}

// InsertMany creates many visibility rows in one batched round trip.
func (r *PostgresVisibilityRepository) InsertMany(ctx context.Context, visibilities []models.ItemVisibility) error {
	if len(visibilities) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, item_path, type, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Visibilities)

	batch := &pgx.Batch{}
	for i := range visibilities {
		v := &visibilities[i]
		batch.Queue(query, v.ID, v.ItemPath, v.Type, v.CreatorID, v.CreatedAt)
	}

	results := GetExecutor(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()
	for range visibilities {
		if _, err := results.Exec(); err != nil {
			if isPgDuplicateError(err) {
				return fmt.Errorf("insert visibilities: %w", domain.ErrConflict)
			}
			return fmt.Errorf("insert visibilities: %w", err)
		}
	}
	return nil
}

// Delete removes the flag at exactly this level.
func (r *PostgresVisibilityRepository) Delete(ctx context.Context, path string, visType models.VisibilityType) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE item_path = $1 AND type = $2
	`, r.tables.Visibilities)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, path, visType)
	if err != nil {
		return fmt.Errorf("delete visibility: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("visibility %s at %s: %w", visType, path, domain.ErrNotFound)
	}
	return nil
}

func scanVisibility(row pgx.Row) (*models.ItemVisibility, error) {
	var v models.ItemVisibility
	err := row.Scan(
		&v.ID,
		&v.ItemPath,
		&v.Type,
		&v.CreatorID,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVisibilities(rows pgx.Rows) ([]models.ItemVisibility, error) {
	var visibilities []models.ItemVisibility
	for rows.Next() {
		v, err := scanVisibility(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visibility: %w", err)
		}
		visibilities = append(visibilities, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visibilities: %w", err)
	}
	return visibilities, nil
}
