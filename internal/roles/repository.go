package roles

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

const roleColumns = `id, organization_id, team_id, name, COALESCE(description, ''), capabilities, created_at, updated_at`

// GetRole loads one role by id. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// ListRoles returns all roles of one organization.
func (r *Repository) ListRoles(ctx context.Context, orgID int64) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles WHERE organization_id = $1 ORDER BY id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListRolesForTeam returns roles attached to one team, scoped by organization.
func (r *Repository) ListRolesForTeam(ctx context.Context, teamID, orgID int64) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles WHERE team_id = $1 AND organization_id = $2 ORDER BY id`, teamID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// InsertRole creates a role.
func (r *Repository) InsertRole(ctx context.Context, input RoleInput) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (organization_id, team_id, name, description, capabilities, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NOW(), NOW())
		RETURNING `+roleColumns,
		input.OrganizationID, input.TeamID, input.Name, input.Description, input.Capabilities)
	return scanRole(row)
}

// UpdateRole updates a role. Returns pgx.ErrNoRows when absent.
func (r *Repository) UpdateRole(ctx context.Context, id int64, input RoleInput) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE roles SET team_id = $2, name = $3, description = NULLIF($4, ''), capabilities = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING `+roleColumns,
		id, input.TeamID, input.Name, input.Description, input.Capabilities)
	return scanRole(row)
}

// DeleteRole removes a role and reports whether a row was deleted.
func (r *Repository) DeleteRole(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.OrganizationID, &role.TeamID, &role.Name, &role.Description, &role.Capabilities, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}
