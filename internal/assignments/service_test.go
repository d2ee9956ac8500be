package assignments

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/chorale-app/chorale/internal/tenancy"
)

type memoryRepo struct {
	rows   map[int64]Assignment
	nextID int64

	insertCalls int
	deleteCalls int
	failOnRole  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]Assignment)}
}

func (r *memoryRepo) seed(userID, orgID, roleID int64) Assignment {
	r.nextID++
	a := Assignment{ID: r.nextID, OrganizationID: orgID, UserID: userID, RoleID: roleID}
	r.rows[a.ID] = a
	return a
}

type memoryTx struct {
	repo *memoryRepo
}

// WithTx snapshots the stored rows and restores them when fn fails, so the
// fake honours all-or-nothing commit semantics.
func (r *memoryRepo) WithTx(_ context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]Assignment, len(r.rows))
	for id, a := range r.rows {
		snapshot[id] = a
	}
	savedNext := r.nextID

	if err := fn(context.Background(), &memoryTx{repo: r}); err != nil {
		r.rows = snapshot
		r.nextID = savedNext
		return err
	}
	return nil
}

func (r *memoryRepo) List(_ context.Context, filter Filter) ([]Assignment, error) {
	var list []Assignment
	for _, a := range r.rows {
		if filter.UserID != 0 && a.UserID != filter.UserID {
			continue
		}
		if filter.OrganizationID != 0 && a.OrganizationID != filter.OrganizationID {
			continue
		}
		list = append(list, a)
	}
	return list, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Assignment, error) {
	a, ok := r.rows[id]
	if !ok {
		return Assignment{}, pgx.ErrNoRows
	}
	return a, nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (t *memoryTx) ListForUser(_ context.Context, userID, orgID int64) ([]Assignment, error) {
	var list []Assignment
	for _, a := range t.repo.rows {
		if a.UserID == userID && a.OrganizationID == orgID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (t *memoryTx) Insert(_ context.Context, userID, orgID int64, target Target) (Assignment, error) {
	t.repo.insertCalls++
	if t.repo.failOnRole != 0 && target.RoleID == t.repo.failOnRole {
		return Assignment{}, errors.New("insert rejected")
	}
	t.repo.nextID++
	a := Assignment{ID: t.repo.nextID, OrganizationID: orgID, UserID: userID, RoleID: target.RoleID, TeamID: target.TeamID}
	t.repo.rows[a.ID] = a
	return a, nil
}

func (t *memoryTx) DeleteByUserRole(_ context.Context, userID, orgID, roleID int64) error {
	t.repo.deleteCalls++
	for id, a := range t.repo.rows {
		if a.UserID == userID && a.OrganizationID == orgID && a.RoleID == roleID {
			delete(t.repo.rows, id)
		}
	}
	return nil
}

func roleIDs(list []Assignment) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(list))
	for _, a := range list {
		ids[a.RoleID] = struct{}{}
	}
	return ids
}

func TestSyncSetAlgebra(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.seed(7, 1, 101)
	kept := repo.seed(7, 1, 102)

	final, err := svc.Sync(ctx, 7, 1, []Target{{RoleID: 102}, {RoleID: 103}})
	require.NoError(t, err)

	ids := roleIDs(final)
	require.Equal(t, map[int64]struct{}{102: {}, 103: {}}, ids)

	// The kept assignment row is the original one, not a delete+reinsert.
	require.Contains(t, repo.rows, kept.ID)
	require.Equal(t, 1, repo.insertCalls)
	require.Equal(t, 1, repo.deleteCalls)
}

func TestSyncEmptyExistingInsertsAll(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	final, err := svc.Sync(context.Background(), 7, 1, []Target{{RoleID: 105}})
	require.NoError(t, err)
	require.Len(t, final, 1)
	require.Equal(t, int64(105), final[0].RoleID)
	require.Equal(t, 1, repo.insertCalls)
	require.Zero(t, repo.deleteCalls)
}

func TestSyncNoOpWritesNothing(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.seed(7, 1, 101)
	repo.seed(7, 1, 102)

	final, err := svc.Sync(ctx, 7, 1, []Target{{RoleID: 101}, {RoleID: 102}})
	require.NoError(t, err)
	require.Len(t, final, 2)
	require.Zero(t, repo.insertCalls)
	require.Zero(t, repo.deleteCalls)
}

func TestSyncAtomicity(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.seed(7, 1, 101)
	repo.seed(7, 1, 102)
	repo.failOnRole = 104

	// 101 would be revoked and 103 created before 104 fails; after the
	// rollback the user must still hold the full pre-sync set.
	_, err := svc.Sync(ctx, 7, 1, []Target{{RoleID: 102}, {RoleID: 103}, {RoleID: 104}})
	require.Error(t, err)

	stored, err := repo.List(ctx, Filter{UserID: 7, OrganizationID: 1})
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{101: {}, 102: {}}, roleIDs(stored))
}

func TestSyncDoesNotTouchOtherOrganizations(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.seed(7, 1, 101)
	otherOrg := repo.seed(7, 2, 201)

	final, err := svc.Sync(ctx, 7, 1, []Target{{RoleID: 103}})
	require.NoError(t, err)
	require.Equal(t, map[int64]struct{}{103: {}}, roleIDs(final))

	// The user's assignment in organization 2 survives a sync in
	// organization 1.
	require.Contains(t, repo.rows, otherOrg.ID)
	require.Equal(t, int64(201), repo.rows[otherOrg.ID].RoleID)
}

func TestSyncEmptyTargetRevokesAll(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.seed(7, 1, 101)
	repo.seed(7, 1, 102)

	final, err := svc.Sync(ctx, 7, 1, nil)
	require.NoError(t, err)
	require.Empty(t, final)
	require.Equal(t, 2, repo.deleteCalls)
}

func TestSyncDuplicateTargetsCollapse(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	final, err := svc.Sync(context.Background(), 7, 1, []Target{{RoleID: 101}, {RoleID: 101}})
	require.NoError(t, err)
	require.Len(t, final, 1)
	require.Equal(t, 1, repo.insertCalls)
}

func TestSyncInputValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Sync(ctx, 7, 0, []Target{{RoleID: 1}})
	require.ErrorIs(t, err, tenancy.ErrMissingOrganization)

	_, err = svc.Sync(ctx, 0, 1, []Target{{RoleID: 1}})
	require.Error(t, err)

	_, err = svc.Sync(ctx, 7, 1, []Target{{}})
	require.Error(t, err)
}

func TestRevokeGuard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	a := repo.seed(7, 1, 101)

	require.ErrorIs(t, svc.Revoke(ctx, a.ID, 2), tenancy.ErrOrganizationMismatch)
	require.ErrorIs(t, svc.Revoke(ctx, a.ID, 0), tenancy.ErrMissingOrganization)
	require.NoError(t, svc.Revoke(ctx, a.ID, 1))
}
