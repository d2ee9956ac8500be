package permissions

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const permissionColumns = `id, organization_id, name, COALESCE(description, ''), actions, created_at, updated_at`

// GetPermission loads one permission by id. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id)
	return scanPermission(row)
}

// ListPermissions returns all permissions of one organization.
func (r *Repository) ListPermissions(ctx context.Context, orgID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE organization_id = $1 ORDER BY id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		perm, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

// InsertPermission creates a permission under the given organization.
func (r *Repository) InsertPermission(ctx context.Context, orgID int64, item PermissionItem) (Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (organization_id, name, description, actions, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NOW(), NOW())
		RETURNING `+permissionColumns,
		orgID, item.Name, item.Description, item.Actions)
	return scanPermission(row)
}

// UpdatePermission updates a permission scoped to its owning organization.
// found is false when no row matched the id under that organization.
func (r *Repository) UpdatePermission(ctx context.Context, id, orgID int64, item PermissionItem) (Permission, bool, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE permissions SET name = $3, description = NULLIF($4, ''), actions = $5, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+permissionColumns,
		id, orgID, item.Name, item.Description, item.Actions)
	if err != nil {
		return Permission{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Permission{}, false, rows.Err()
	}
	perm, err := scanPermission(rows)
	if err != nil {
		return Permission{}, false, err
	}
	return perm, true, rows.Err()
}

// DeletePermission removes a permission and reports whether a row was deleted.
func (r *Repository) DeletePermission(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPermission(row rowScanner) (Permission, error) {
	var perm Permission
	err := row.Scan(&perm.ID, &perm.OrganizationID, &perm.Name, &perm.Description, &perm.Actions, &perm.CreatedAt, &perm.UpdatedAt)
	return perm, err
}
