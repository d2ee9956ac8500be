package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/chorale-app/chorale/internal/reconcile"
	"github.com/chorale-app/chorale/internal/tenancy"
)

type memoryRepo struct {
	perms     map[int64]Permission
	nextID    int64
	insertErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{perms: make(map[int64]Permission)}
}

func (r *memoryRepo) GetPermission(_ context.Context, id int64) (Permission, error) {
	perm, ok := r.perms[id]
	if !ok {
		return Permission{}, pgx.ErrNoRows
	}
	return perm, nil
}

func (r *memoryRepo) ListPermissions(_ context.Context, orgID int64) ([]Permission, error) {
	var list []Permission
	for _, perm := range r.perms {
		if perm.OrganizationID == orgID {
			list = append(list, perm)
		}
	}
	return list, nil
}

func (r *memoryRepo) InsertPermission(_ context.Context, orgID int64, item PermissionItem) (Permission, error) {
	if r.insertErr != nil {
		return Permission{}, r.insertErr
	}
	r.nextID++
	perm := Permission{
		ID:             r.nextID,
		OrganizationID: orgID,
		Name:           item.Name,
		Description:    item.Description,
		Actions:        item.Actions,
	}
	r.perms[perm.ID] = perm
	return perm, nil
}

func (r *memoryRepo) UpdatePermission(_ context.Context, id, orgID int64, item PermissionItem) (Permission, bool, error) {
	perm, ok := r.perms[id]
	if !ok || perm.OrganizationID != orgID {
		return Permission{}, false, nil
	}
	perm.Name = item.Name
	perm.Description = item.Description
	perm.Actions = item.Actions
	r.perms[id] = perm
	return perm, true, nil
}

func (r *memoryRepo) DeletePermission(_ context.Context, id int64) (bool, error) {
	if _, ok := r.perms[id]; !ok {
		return false, nil
	}
	delete(r.perms, id)
	return true, nil
}

func TestBulkReplaceUpdatesAndCreates(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	seeded, err := repo.InsertPermission(ctx, 10, PermissionItem{Name: "songs.read"})
	require.NoError(t, err)

	results, err := svc.BulkReplace(ctx, 1, 10, []PermissionItem{
		{ID: seeded.ID, Name: "songs.manage", Actions: []string{"read", "write"}},
		{Name: "teams.read"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, reconcile.StatusUpdated, results[0].Status)
	require.Equal(t, "songs.manage", results[0].Record.Name)
	require.Equal(t, reconcile.StatusCreated, results[1].Status)
	require.Equal(t, int64(10), results[1].Record.OrganizationID)
}

func TestBulkReplaceStaleIDBecomesCreate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	results, err := svc.BulkReplace(ctx, 1, 10, []PermissionItem{{ID: 777, Name: "ghost.grant"}})
	require.NoError(t, err)
	require.Equal(t, reconcile.StatusCreated, results[0].Status)
	require.NotEqual(t, int64(777), results[0].Record.ID)
	require.Equal(t, int64(10), results[0].Record.OrganizationID)

	// Submitting the same stale id again creates a second record, not an error.
	results, err = svc.BulkReplace(ctx, 1, 10, []PermissionItem{{ID: 777, Name: "ghost.grant"}})
	require.NoError(t, err)
	require.Equal(t, reconcile.StatusCreated, results[0].Status)
	require.Len(t, repo.perms, 2)
}

func TestBulkReplaceDoesNotCrossOrganizations(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	foreign, err := repo.InsertPermission(ctx, 99, PermissionItem{Name: "foreign.grant"})
	require.NoError(t, err)

	// Updating an id owned by another organization falls back to insert
	// under the caller's organization; the foreign record is untouched.
	results, err := svc.BulkReplace(ctx, 1, 10, []PermissionItem{{ID: foreign.ID, Name: "hijack"}})
	require.NoError(t, err)
	require.Equal(t, reconcile.StatusCreated, results[0].Status)
	require.Equal(t, int64(10), results[0].Record.OrganizationID)
	require.Equal(t, "foreign.grant", repo.perms[foreign.ID].Name)
}

func TestBulkReplacePartialFailure(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	results, err := svc.BulkReplace(ctx, 1, 10, []PermissionItem{
		{Name: "first.grant"},
		{Name: ""}, // fails validation
		{Name: "third.grant"},
	})
	require.NoError(t, err)
	require.Equal(t, reconcile.StatusCreated, results[0].Status)
	require.Equal(t, reconcile.StatusFailed, results[1].Status)
	require.Error(t, results[1].Err)
	require.Equal(t, reconcile.StatusCreated, results[2].Status)

	// Items persisted before and after the failure stay persisted.
	require.Len(t, repo.perms, 2)
}

func TestBulkReplaceRequiresOrganization(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.BulkReplace(context.Background(), 1, 0, nil)
	require.ErrorIs(t, err, tenancy.ErrMissingOrganization)
}

func TestDeletePermissionGuard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	perm, err := repo.InsertPermission(ctx, 10, PermissionItem{Name: "songs.read"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeletePermission(ctx, 1, perm.ID, 20), tenancy.ErrOrganizationMismatch)
	require.ErrorIs(t, svc.DeletePermission(ctx, 1, 999, 10), tenancy.ErrNotFound)
	require.NoError(t, svc.DeletePermission(ctx, 1, perm.ID, 10))
}

func TestBulkReplaceSurfacesStoreErrors(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	repo.insertErr = errors.New("connection reset")

	results, err := svc.BulkReplace(context.Background(), 1, 10, []PermissionItem{{Name: "a"}})
	require.NoError(t, err)
	require.Equal(t, reconcile.StatusFailed, results[0].Status)
	require.ErrorContains(t, results[0].Err, "connection reset")
}
