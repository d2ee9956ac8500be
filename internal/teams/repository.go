package teams

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

const teamColumns = `id, organization_id, name, COALESCE(description, ''), created_at, updated_at`
const memberColumns = `id, team_id, organization_id, user_id, COALESCE(position, ''), created_at, updated_at`

// GetTeam loads one team by id. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

// ListTeams returns all teams of one organization.
func (r *Repository) ListTeams(ctx context.Context, orgID int64) ([]Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE organization_id = $1 ORDER BY id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// InsertTeam creates a team.
func (r *Repository) InsertTeam(ctx context.Context, input TeamInput) (Team, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO teams (organization_id, name, description, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NOW(), NOW())
		RETURNING `+teamColumns,
		input.OrganizationID, input.Name, input.Description)
	return scanTeam(row)
}

// UpdateTeam renames a team. Returns pgx.ErrNoRows when absent.
func (r *Repository) UpdateTeam(ctx context.Context, id int64, input TeamInput) (Team, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE teams SET name = $2, description = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING `+teamColumns,
		id, input.Name, input.Description)
	return scanTeam(row)
}

// DeleteTeam removes a team and its roster rows via cascade.
func (r *Repository) DeleteTeam(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListMembers returns the roster of one team.
func (r *Repository) ListMembers(ctx context.Context, teamID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM team_members WHERE team_id = $1 ORDER BY id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// InsertMember creates a roster entry stamped with the parent team's
// organization and team ids.
func (r *Repository) InsertMember(ctx context.Context, team Team, item MemberItem) (Member, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO team_members (team_id, organization_id, user_id, position, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NOW(), NOW())
		RETURNING `+memberColumns,
		team.ID, team.OrganizationID, item.UserID, item.Position)
	return scanMember(row)
}

// UpdateMember updates a roster entry scoped to its team. found is false
// when no row matched the id under that team.
func (r *Repository) UpdateMember(ctx context.Context, id int64, team Team, item MemberItem) (Member, bool, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE team_members SET user_id = $3, position = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND team_id = $2
		RETURNING `+memberColumns,
		id, team.ID, item.UserID, item.Position)
	if err != nil {
		return Member{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return Member{}, false, rows.Err()
	}
	member, err := scanMember(rows)
	if err != nil {
		return Member{}, false, err
	}
	return member, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (Team, error) {
	var team Team
	err := row.Scan(&team.ID, &team.OrganizationID, &team.Name, &team.Description, &team.CreatedAt, &team.UpdatedAt)
	return team, err
}

func scanMember(row rowScanner) (Member, error) {
	var member Member
	err := row.Scan(&member.ID, &member.TeamID, &member.OrganizationID, &member.UserID, &member.Position, &member.CreatedAt, &member.UpdatedAt)
	return member, err
}
