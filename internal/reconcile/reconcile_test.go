package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int64
	Name string
}

type record struct {
	ID    int64
	Name  string
	OrgID int64
}

type fakeStore struct {
	records map[int64]record
	nextID  int64
	orgID   int64

	updateCalls int
	insertCalls int
	insertErr   error
}

func newFakeStore(orgID int64) *fakeStore {
	return &fakeStore{records: make(map[int64]record), orgID: orgID}
}

func (s *fakeStore) ops() Ops[item, record] {
	return Ops[item, record]{
		ExistingID: func(it item) int64 { return it.ID },
		Update: func(_ context.Context, id int64, it item) (record, bool, error) {
			s.updateCalls++
			rec, ok := s.records[id]
			if !ok {
				return record{}, false, nil
			}
			rec.Name = it.Name
			s.records[id] = rec
			return rec, true, nil
		},
		Insert: func(_ context.Context, it item) (record, error) {
			s.insertCalls++
			if s.insertErr != nil {
				return record{}, s.insertErr
			}
			s.nextID++
			rec := record{ID: s.nextID, Name: it.Name, OrgID: s.orgID}
			s.records[rec.ID] = rec
			return rec, nil
		},
	}
}

func TestReplaceRoutesUpdateAndInsert(t *testing.T) {
	store := newFakeStore(1)
	store.records[5] = record{ID: 5, Name: "old", OrgID: 1}
	store.nextID = 5

	results := Replace(context.Background(), []item{
		{ID: 5, Name: "renamed"},
		{Name: "brand new"},
	}, store.ops())

	require.Len(t, results, 2)
	require.Equal(t, StatusUpdated, results[0].Status)
	require.Equal(t, "renamed", results[0].Record.Name)
	require.Equal(t, StatusCreated, results[1].Status)
	require.Equal(t, int64(1), results[1].Record.OrgID)
}

func TestReplaceStaleIDFallsBackToInsert(t *testing.T) {
	store := newFakeStore(1)

	results := Replace(context.Background(), []item{{ID: 123, Name: "ghost"}}, store.ops())

	require.Equal(t, StatusCreated, results[0].Status)
	require.NotEqual(t, int64(123), results[0].Record.ID)
	require.Equal(t, int64(1), results[0].Record.OrgID)

	// Resubmitting the same stale id creates a second independent record.
	results = Replace(context.Background(), []item{{ID: 123, Name: "ghost"}}, store.ops())
	require.Equal(t, StatusCreated, results[0].Status)
	require.Len(t, store.records, 2)
}

func TestReplaceContinuesAfterFailure(t *testing.T) {
	store := newFakeStore(1)
	boom := errors.New("constraint violation")
	ops := store.ops()
	ops.Validate = func(it item) error {
		if it.Name == "" {
			return errors.New("name required")
		}
		return nil
	}

	store.insertErr = boom
	first := Replace(context.Background(), []item{{Name: "a"}}, ops)
	require.Equal(t, StatusFailed, first[0].Status)
	require.ErrorIs(t, first[0].Err, boom)

	store.insertErr = nil
	results := Replace(context.Background(), []item{
		{Name: ""},
		{Name: "b"},
		{Name: "c"},
	}, ops)

	require.Equal(t, StatusFailed, results[0].Status)
	require.Equal(t, StatusCreated, results[1].Status)
	require.Equal(t, StatusCreated, results[2].Status)

	// Output order mirrors input order regardless of outcomes.
	created, updated, failed := Counts(results)
	require.Equal(t, 2, created)
	require.Equal(t, 0, updated)
	require.Equal(t, 1, failed)
}

func TestReplaceCancelledContext(t *testing.T) {
	store := newFakeStore(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Replace(ctx, []item{{Name: "a"}, {Name: "b"}}, store.ops())
	for _, res := range results {
		require.Equal(t, StatusFailed, res.Status)
		require.ErrorIs(t, res.Err, context.Canceled)
	}
	require.Zero(t, store.insertCalls)
}
