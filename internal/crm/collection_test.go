package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxcrm/flux/internal/api"
)

// staticCreds satisfies api.CredentialSource with fixed values.
type staticCreds struct {
	token string
	orgID string
}

func (s staticCreds) AccessToken() string               { return s.token }
func (s staticCreds) OrganizationID() string            { return s.orgID }
func (s staticCreds) Refresh(ctx context.Context) error { return nil }

// fakeResources serves a mutable in-memory account list.
type fakeResources struct {
	mu        sync.Mutex
	accounts  []Account
	listCalls int
}

func (f *fakeResources) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /accounts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.listCalls++
		items := append([]Account(nil), f.accounts...)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(items)
	})

	mux.HandleFunc("POST /accounts", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		created := Account{ID: "acc-new", Name: in["name"], OrganizationID: r.Header.Get("x-org-id")}
		f.mu.Lock()
		f.accounts = append(f.accounts, created)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(created)
	})

	mux.HandleFunc("PUT /accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		id := r.PathValue("id")
		f.mu.Lock()
		var updated Account
		for i := range f.accounts {
			if f.accounts[i].ID == id {
				f.accounts[i].Name = in["name"]
				updated = f.accounts[i]
			}
		}
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(updated)
	})

	mux.HandleFunc("DELETE /accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		kept := f.accounts[:0]
		for _, a := range f.accounts {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		f.accounts = kept
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func (f *fakeResources) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func newTestCollection(t *testing.T, f *fakeResources) *Collection[Account] {
	t.Helper()
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, staticCreds{token: "tok", orgID: "org-1"}, nil)
	return Accounts(client)
}

func TestCollectionEnableFetches(t *testing.T) {
	f := &fakeResources{accounts: []Account{{ID: "a1", Name: "Acme"}}}
	col := newTestCollection(t, f)
	ctx := context.Background()

	require.NoError(t, col.SetEnabled(ctx, true))

	items := col.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].Name)
	assert.Equal(t, 1, f.listCount())
	assert.NoError(t, col.Err())

	// Enabling again does not refetch.
	require.NoError(t, col.SetEnabled(ctx, true))
	assert.Equal(t, 1, f.listCount())
}

func TestCollectionEmptyListIsValid(t *testing.T) {
	f := &fakeResources{}
	col := newTestCollection(t, f)

	require.NoError(t, col.SetEnabled(context.Background(), true))
	assert.Empty(t, col.Items())
	assert.NoError(t, col.Err())
	assert.False(t, col.Loading())
}

func TestCollectionDisableClearsAndSuppresses(t *testing.T) {
	f := &fakeResources{accounts: []Account{{ID: "a1", Name: "Acme"}}}
	col := newTestCollection(t, f)
	ctx := context.Background()

	require.NoError(t, col.SetEnabled(ctx, true))
	require.NoError(t, col.SetEnabled(ctx, false))

	assert.Empty(t, col.Items())

	// Refresh while disabled issues no request.
	require.NoError(t, col.Refresh(ctx))
	assert.Equal(t, 1, f.listCount())
}

func TestCreateTriggersSingleRefetch(t *testing.T) {
	f := &fakeResources{}
	col := newTestCollection(t, f)
	ctx := context.Background()

	require.NoError(t, col.SetEnabled(ctx, true))
	before := f.listCount()

	created, err := col.Create(ctx, map[string]string{"name": "Globex"})
	require.NoError(t, err)
	assert.Equal(t, "acc-new", created.ID)

	// Exactly one additional list call and the cache reflects its result.
	assert.Equal(t, before+1, f.listCount())
	items := col.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Globex", items[0].Name)
}

func TestUpdateTriggersSingleRefetch(t *testing.T) {
	f := &fakeResources{accounts: []Account{{ID: "a1", Name: "Acme"}}}
	col := newTestCollection(t, f)
	ctx := context.Background()

	require.NoError(t, col.SetEnabled(ctx, true))
	before := f.listCount()

	updated, err := col.Update(ctx, "a1", map[string]string{"name": "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)

	assert.Equal(t, before+1, f.listCount())
	items := col.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Acme Corp", items[0].Name)
}

func TestRemoveTriggersSingleRefetch(t *testing.T) {
	f := &fakeResources{accounts: []Account{{ID: "a1", Name: "Acme"}}}
	col := newTestCollection(t, f)
	ctx := context.Background()

	require.NoError(t, col.SetEnabled(ctx, true))
	before := f.listCount()

	require.NoError(t, col.Remove(ctx, "a1"))

	// No speculative local entries: the cache is whatever the re-fetch saw.
	assert.Equal(t, before+1, f.listCount())
	assert.Empty(t, col.Items())
}

func TestCollectionRequiresOrganization(t *testing.T) {
	f := &fakeResources{}
	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, staticCreds{token: "tok"}, nil)
	col := Accounts(client)

	err := col.SetEnabled(context.Background(), true)
	require.Error(t, err)

	apiErr, ok := err.(*api.Error)
	require.True(t, ok)
	assert.Equal(t, api.KindMissingOrg, apiErr.Kind)
	assert.Equal(t, 0, f.listCount())

	// The failure is recorded on the collection.
	assert.ErrorIs(t, col.Err(), err)
}

func TestCollectionErrorStateIsIndependent(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	t.Cleanup(bad.Close)

	f := &fakeResources{accounts: []Account{{ID: "a1", Name: "Acme"}}}
	good := newTestCollection(t, f)

	failing := NewCollection[Account](api.NewClient(bad.URL, staticCreds{token: "tok", orgID: "org-1"}, nil), "/accounts")

	ctx := context.Background()
	require.NoError(t, good.SetEnabled(ctx, true))
	require.Error(t, failing.SetEnabled(ctx, true))

	assert.NoError(t, good.Err())
	assert.Error(t, failing.Err())
	assert.Len(t, good.Items(), 1)
}
