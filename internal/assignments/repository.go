package assignments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chorale-app/chorale/internal/platform/db"
)

// ErrDuplicateAssignment indicates the (organization, user, role) triple
// already exists.
var ErrDuplicateAssignment = errors.New("assignments: assignment already exists")

// Repository persists role assignments in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations the synchronizer runs inside one
// transaction.
type TxRepository interface {
	ListForUser(ctx context.Context, userID, orgID int64) ([]Assignment, error)
	Insert(ctx context.Context, userID, orgID int64, target Target) (Assignment, error)
	DeleteByUserRole(ctx context.Context, userID, orgID, roleID int64) error
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type txRepo struct {
	q querier
}

// WithTx executes the callback inside one transaction. All deletes and
// inserts of a sync call commit together or not at all.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

const assignmentColumns = `id, organization_id, user_id, role_id, team_id, created_at, updated_at`

// List returns assignments matching the filter.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM user_roles
		WHERE ($1 = 0 OR user_id = $1)
		  AND ($2 = 0 OR organization_id = $2)
		  AND ($3 = 0 OR role_id = $3)
		  AND ($4 = 0 OR team_id = $4)
		ORDER BY id`,
		filter.UserID, filter.OrganizationID, filter.RoleID, filter.TeamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// Get loads one assignment by id. Returns pgx.ErrNoRows when absent.
func (r *Repository) Get(ctx context.Context, id int64) (Assignment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM user_roles WHERE id = $1`, id)
	return scanAssignment(row)
}

// Delete removes one assignment by id.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (t *txRepo) ListForUser(ctx context.Context, userID, orgID int64) ([]Assignment, error) {
	rows, err := t.q.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM user_roles
		WHERE user_id = $1 AND organization_id = $2
		ORDER BY id`,
		userID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func (t *txRepo) Insert(ctx context.Context, userID, orgID int64, target Target) (Assignment, error) {
	row := t.q.QueryRow(ctx, `
		INSERT INTO user_roles (organization_id, user_id, role_id, team_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING `+assignmentColumns,
		orgID, userID, target.RoleID, target.TeamID)
	assignment, err := scanAssignment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Assignment{}, ErrDuplicateAssignment
		}
		return Assignment{}, err
	}
	return assignment, nil
}

func (t *txRepo) DeleteByUserRole(ctx context.Context, userID, orgID, roleID int64) error {
	_, err := t.q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND organization_id = $2 AND role_id = $3`, userID, orgID, roleID)
	return err
}

func collectAssignments(rows pgx.Rows) ([]Assignment, error) {
	var list []Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, assignment)
	}
	return list, rows.Err()
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.OrganizationID, &a.UserID, &a.RoleID, &a.TeamID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
