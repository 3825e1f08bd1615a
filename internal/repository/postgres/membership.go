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
)

const membershipColumns = `id, account_id, item_path, permission, creator_id, created_at, updated_at`

// PostgresMembershipRepository implements the MembershipRepository interface
type PostgresMembershipRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(config *RepositoryConfig) repositories.MembershipRepository {
	return &PostgresMembershipRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByID retrieves a membership by ID
func (r *PostgresMembershipRepository) GetByID(ctx context.Context, id string) (*models.ItemMembership, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, membershipColumns, r.tables.Memberships)

	m, err := scanMembership(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("membership %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// GetForAccountAtPaths fetches the account's grants on an exact prefix list
// in one round trip; the resolver picks the deepest match.
func (r *PostgresMembershipRepository) GetForAccountAtPaths(ctx context.Context, accountID string, paths []string) ([]models.ItemMembership, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE account_id = $1 AND item_path = ANY($2)
	`, membershipColumns, r.tables.Memberships)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, accountID, paths)
	if err != nil {
		return nil, fmt.Errorf("get memberships at paths: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// GetByAccountAndPath returns the grant at exactly this path, if any.
func (r *PostgresMembershipRepository) GetByAccountAndPath(ctx context.Context, accountID, path string) (*models.ItemMembership, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE account_id = $1 AND item_path = $2
	`, membershipColumns, r.tables.Memberships)

	m, err := scanMembership(GetExecutor(ctx, r.pool).QueryRow(ctx, query, accountID, path))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // no grant at this level, not an error
		}
		return nil, fmt.Errorf("get membership by account and path: %w", err)
	}
	return m, nil
}

// GetBelowPath returns every membership attached at or under the prefix.
func (r *PostgresMembershipRepository) GetBelowPath(ctx context.Context, path string) ([]models.ItemMembership, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE item_path = $1 OR item_path LIKE $1 || '.%%'
		ORDER BY item_path ASC
	`, membershipColumns, r.tables.Memberships)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, path)
	if err != nil {
		return nil, fmt.Errorf("get memberships below path: %w", err)
	}
	defer rows.Close()

	return collectMemberships(rows)
}

// Insert creates a membership row.
func (r *PostgresMembershipRepository) Insert(ctx context.Context, membership *models.ItemMembership) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, item_path, permission, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Memberships)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		membership.ID,
		membership.AccountID,
		membership.ItemPath,
		membership.Permission,
		membership.CreatorID,
		membership.CreatedAt,
		membership.UpdatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("membership for account %s at %s: %w", membership.AccountID, membership.ItemPath, domain.ErrConflict)
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// InsertMany creates many membership rows in one batched round trip.
func (r *PostgresMembershipRepository) InsertMany(ctx context.Context, memberships []models.ItemMembership) error {
	if len(memberships) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, item_path, permission, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Memberships)

	batch := &pgx.Batch{}
	for i := range memberships {
		m := &memberships[i]
		batch.Queue(query, m.ID, m.AccountID, m.ItemPath, m.Permission, m.CreatorID, m.CreatedAt, m.UpdatedAt)
	}

	results := GetExecutor(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()
	for range memberships {
		if _, err := results.Exec(); err != nil {
			if isPgDuplicateError(err) {
				return fmt.Errorf("insert memberships: %w", domain.ErrConflict)
			}
			return fmt.Errorf("insert memberships: %w", err)
		}
	}
	return nil
}

// UpdatePermission changes the level of an existing grant.
func (r *PostgresMembershipRepository) UpdatePermission(ctx context.Context, id string, permission models.Permission) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET permission = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Memberships)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, permission, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("membership %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a grant.
func (r *PostgresMembershipRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Memberships)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("membership %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanMembership(row pgx.Row) (*models.ItemMembership, error) {
	var m models.ItemMembership
	err := row.Scan(
		&m.ID,
		&m.AccountID,
		&m.ItemPath,
		&m.Permission,
		&m.CreatorID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMemberships(rows pgx.Rows) ([]models.ItemMembership, error) {
	var memberships []models.ItemMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		memberships = append(memberships, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return memberships, nil
}
