package store_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/owuorviny109/crmsync/internal/api"
	"github.com/owuorviny109/crmsync/internal/crm"
	"github.com/owuorviny109/crmsync/internal/store"
)

type leadInput struct {
	Name string
}

type leadsBackend struct {
	nextID  int64
	fetch   func() (*crm.List[crm.Lead], error)
	failAll bool
}

func newLeadsStore(backend *leadsBackend) *store.Collection[crm.Lead, leadInput] {
	return store.NewCollection(store.CollectionConfig[crm.Lead, leadInput]{
		API: store.CollectionAPI[crm.Lead, leadInput]{
			FetchAll: func(ctx context.Context, params url.Values) (*crm.List[crm.Lead], error) {
				if backend.fetch != nil {
					return backend.fetch()
				}
				return &crm.List[crm.Lead]{}, nil
			},
			FetchOne: func(ctx context.Context, id int64) (*crm.Lead, error) {
				return &crm.Lead{ID: id, Name: fmt.Sprintf("lead-%d", id)}, nil
			},
			Create: func(ctx context.Context, data leadInput) (*crm.Lead, error) {
				if backend.failAll {
					return nil, errors.New("boom")
				}
				backend.nextID++
				return &crm.Lead{ID: backend.nextID, Name: data.Name}, nil
			},
			Update: func(ctx context.Context, id int64, data leadInput) (*crm.Lead, error) {
				if backend.failAll {
					return nil, errors.New("boom")
				}
				return &crm.Lead{ID: id, Name: data.Name}, nil
			},
			Delete: func(ctx context.Context, id int64) error {
				if backend.failAll {
					return errors.New("boom")
				}
				return nil
			},
		},
		Messages: store.Messages{
			FetchAll: "Failed to fetch leads",
			FetchOne: "Failed to fetch lead",
			Create:   "Failed to create lead",
			Update:   "Failed to update lead",
			Delete:   "Failed to delete lead",
		},
		TrackPagination:   true,
		ReconcileSelected: true,
	})
}

func ids(items []crm.Lead) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func requireUniqueIDs(t *testing.T, items []crm.Lead) {
	t.Helper()
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		require.False(t, seen[item.ID], "duplicate id %d", item.ID)
		seen[item.ID] = true
	}
}

func TestCollection_FetchAllPaginatedEnvelope(t *testing.T) {
	backend := &leadsBackend{fetch: func() (*crm.List[crm.Lead], error) {
		next := "http://x/api/leads/?page=2"
		return &crm.List[crm.Lead]{
			Count:     1,
			Next:      &next,
			Results:   []crm.Lead{{ID: 5, Name: "X"}},
			Paginated: true,
		}, nil
	}}
	leads := newLeadsStore(backend)

	result := leads.FetchAll(context.Background(), url.Values{})
	require.True(t, result.Success)
	require.Equal(t, []int64{5}, ids(leads.Items()))

	pagination := leads.Pagination()
	require.NotNil(t, pagination)
	require.Equal(t, 1, pagination.Count)
	require.NotNil(t, pagination.Next)
	require.False(t, leads.Loading())
}

func TestCollection_FetchAllBareArrayKeepsPaginationUnset(t *testing.T) {
	backend := &leadsBackend{fetch: func() (*crm.List[crm.Lead], error) {
		return &crm.List[crm.Lead]{Results: []crm.Lead{{ID: 1}, {ID: 2}}}, nil
	}}
	leads := newLeadsStore(backend)

	result := leads.FetchAll(context.Background(), nil)
	require.True(t, result.Success)
	require.Equal(t, []int64{1, 2}, ids(leads.Items()))
	require.Nil(t, leads.Pagination())
}

func TestCollection_FetchAllReplacesWholeCollection(t *testing.T) {
	backend := &leadsBackend{fetch: func() (*crm.List[crm.Lead], error) {
		return &crm.List[crm.Lead]{Results: []crm.Lead{{ID: 9}}}, nil
	}}
	leads := newLeadsStore(backend)
	leads.Create(context.Background(), leadInput{Name: "old"})

	result := leads.FetchAll(context.Background(), nil)
	require.True(t, result.Success)
	require.Equal(t, []int64{9}, ids(leads.Items()))
}

func TestCollection_FetchAllFailureKeepsItems(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)
	leads.Create(context.Background(), leadInput{Name: "keep"})

	backend.fetch = func() (*crm.List[crm.Lead], error) {
		return nil, errors.New("connection reset")
	}
	result := leads.FetchAll(context.Background(), nil)

	require.False(t, result.Success)
	require.Equal(t, "Failed to fetch leads", result.Error)
	require.Equal(t, "Failed to fetch leads", leads.Err())
	require.Len(t, leads.Items(), 1)
	require.False(t, leads.Loading())
}

func TestCollection_CreatePrependsAtIndexZero(t *testing.T) {
	backend := &leadsBackend{nextID: 4}
	leads := newLeadsStore(backend)

	first := leads.Create(context.Background(), leadInput{Name: "A"})
	require.True(t, first.Success)
	second := leads.Create(context.Background(), leadInput{Name: "Y"})
	require.True(t, second.Success)

	items := leads.Items()
	require.Equal(t, []int64{6, 5}, ids(items))
	require.Equal(t, "Y", items[0].Name)
	requireUniqueIDs(t, items)
}

func TestCollection_UpdatePreservesPosition(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)
	seed(t, leads, 3) // ids 3, 2, 1 front to back

	result := leads.Update(context.Background(), 2, leadInput{Name: "renamed"})
	require.True(t, result.Success)

	items := leads.Items()
	require.Equal(t, []int64{3, 2, 1}, ids(items))
	require.Equal(t, "renamed", items[1].Name)
	requireUniqueIDs(t, items)
}

func TestCollection_UpdateAbsentIDLeavesItemsUnchanged(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)
	seed(t, leads, 2)
	before := leads.Items()

	result := leads.Update(context.Background(), 99, leadInput{Name: "ghost"})
	require.True(t, result.Success)
	require.Equal(t, before, leads.Items())
}

func TestCollection_UpdateReconcilesSelected(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)
	seed(t, leads, 2)

	require.True(t, leads.FetchOne(context.Background(), 1).Success)
	require.Equal(t, "lead-1", leads.Selected().Name)

	result := leads.Update(context.Background(), 1, leadInput{Name: "fresh"})
	require.True(t, result.Success)
	require.Equal(t, "fresh", leads.Selected().Name)
}

func TestCollection_UpdateLeavesUnrelatedSelectedAlone(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)
	seed(t, leads, 2)

	require.True(t, leads.FetchOne(context.Background(), 2).Success)
	result := leads.Update(context.Background(), 1, leadInput{Name: "other"})
	require.True(t, result.Success)
	require.Equal(t, "lead-2", leads.Selected().Name)
}

func TestCollection_DeleteRemovesMatchingID(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)
	seed(t, leads, 3)

	result := leads.Delete(context.Background(), 2)
	require.True(t, result.Success)
	require.Equal(t, []int64{3, 1}, ids(leads.Items()))

	// Absent id is a local no-op.
	result = leads.Delete(context.Background(), 2)
	require.True(t, result.Success)
	require.Equal(t, []int64{3, 1}, ids(leads.Items()))
}

func TestCollection_FetchOneDoesNotTouchItems(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)
	seed(t, leads, 2)
	before := ids(leads.Items())

	result := leads.FetchOne(context.Background(), 42)
	require.True(t, result.Success)
	require.Equal(t, int64(42), leads.Selected().ID)
	require.Equal(t, before, ids(leads.Items()))
}

func TestCollection_LoadingTrueStrictlyDuringPendingPhase(t *testing.T) {
	var duringCall bool
	var leads *store.Collection[crm.Lead, leadInput]
	leads = store.NewCollection(store.CollectionConfig[crm.Lead, leadInput]{
		API: store.CollectionAPI[crm.Lead, leadInput]{
			FetchAll: func(ctx context.Context, params url.Values) (*crm.List[crm.Lead], error) {
				duringCall = leads.Loading()
				return &crm.List[crm.Lead]{}, nil
			},
		},
		Messages: store.Messages{FetchAll: "Failed to fetch leads"},
	})

	require.False(t, leads.Loading())
	result := leads.FetchAll(context.Background(), nil)
	require.True(t, result.Success)
	require.True(t, duringCall)
	require.False(t, leads.Loading())
}

func TestCollection_LoadingClearsOnFailure(t *testing.T) {
	backend := &leadsBackend{failAll: true}
	leads := newLeadsStore(backend)

	result := leads.Create(context.Background(), leadInput{Name: "nope"})
	require.False(t, result.Success)
	require.Equal(t, "Failed to create lead", result.Error)
	require.False(t, leads.Loading())
}

func TestCollection_ErrorDetailPreferredOverFallback(t *testing.T) {
	leads := store.NewCollection(store.CollectionConfig[crm.Lead, leadInput]{
		API: store.CollectionAPI[crm.Lead, leadInput]{
			Create: func(ctx context.Context, data leadInput) (*crm.Lead, error) {
				return nil, &api.Error{Status: 400, Detail: "Name already taken"}
			},
		},
		Messages: store.Messages{Create: "Failed to create lead"},
	})

	result := leads.Create(context.Background(), leadInput{Name: "dup"})
	require.False(t, result.Success)
	require.Equal(t, "Name already taken", result.Error)
	require.Equal(t, "Name already taken", leads.Err())
}

func TestCollection_ErrorSurvivesUnrelatedSuccess(t *testing.T) {
	backend := &leadsBackend{}
	leads := newLeadsStore(backend)

	backend.failAll = true
	require.False(t, leads.Create(context.Background(), leadInput{}).Success)
	require.Equal(t, "Failed to create lead", leads.Err())

	// The stale error stays visible after a later successful action:
	// collection actions do not reset it at start.
	backend.failAll = false
	require.True(t, leads.Create(context.Background(), leadInput{Name: "ok"}).Success)
	require.Equal(t, "Failed to create lead", leads.Err())
}

func TestCollection_UnsupportedOperation(t *testing.T) {
	contacts := store.NewCollection(store.CollectionConfig[crm.Contact, leadInput]{
		Messages: store.Messages{FetchOne: "Failed to fetch contact"},
	})

	result := contacts.FetchOne(context.Background(), 1)
	require.False(t, result.Success)
	require.Equal(t, "operation not supported", result.Error)
	require.Empty(t, contacts.Err())
	require.False(t, contacts.Loading())
}

func TestCollection_WhereFilters(t *testing.T) {
	backend := &leadsBackend{fetch: func() (*crm.List[crm.Lead], error) {
		return &crm.List[crm.Lead]{Results: []crm.Lead{
			{ID: 1, Status: crm.LeadStatusNew},
			{ID: 2, Status: crm.LeadStatusWon},
			{ID: 3, Status: crm.LeadStatusNew},
		}}, nil
	}}
	leads := newLeadsStore(backend)
	require.True(t, leads.FetchAll(context.Background(), nil).Success)

	fresh := leads.Where(func(l crm.Lead) bool { return l.Status == crm.LeadStatusNew })
	require.Equal(t, []int64{1, 3}, ids(fresh))
}

// seed creates n records through the store so items hold ids n..1
// front to back.
func seed(t *testing.T, leads *store.Collection[crm.Lead, leadInput], n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		result := leads.Create(context.Background(), leadInput{Name: fmt.Sprintf("seed-%d", i+1)})
		require.True(t, result.Success)
	}
	require.Len(t, leads.Items(), n)
}
