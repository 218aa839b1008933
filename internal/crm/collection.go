// Package crm provides the per-entity fetch-and-cache facades over the
// gateway. Every collection requires organization scope; each tracks its own
// loading and error state so a failure in one never affects another.
package crm

import (
	"context"
	"sync"

	"github.com/fluxcrm/flux/internal/api"
)

// Collection is a fetch-and-cache facade for one resource type. Writes never
// patch the cache locally; every create, update, and remove is followed by
// exactly one re-fetch of the list, so the cache always reflects the server's
// authoritative state including server-computed fields.
type Collection[T any] struct {
	client *api.Client
	path   string

	mu      sync.Mutex
	enabled bool
	items   []T
	loading bool
	err     error
}

// NewCollection creates a collection for the resource at path (e.g. "/deals").
func NewCollection[T any](client *api.Client, path string) *Collection[T] {
	return &Collection[T]{client: client, path: path}
}

// Accounts creates the accounts collection.
func Accounts(client *api.Client) *Collection[Account] {
	return NewCollection[Account](client, "/accounts")
}

// Contacts creates the contacts collection.
func Contacts(client *api.Client) *Collection[Contact] {
	return NewCollection[Contact](client, "/contacts")
}

// PipelineStages creates the pipeline stages collection.
func PipelineStages(client *api.Client) *Collection[PipelineStage] {
	return NewCollection[PipelineStage](client, "/pipeline-stages")
}

// Deals creates the deals collection.
func Deals(client *api.Client) *Collection[Deal] {
	return NewCollection[Deal](client, "/deals")
}

// Tasks creates the tasks collection.
func Tasks(client *api.Client) *Collection[Task] {
	return NewCollection[Task](client, "/tasks")
}

// SetEnabled gates the collection on its precondition (an organization is
// selected). Transitioning to true triggers a fetch; transitioning to false
// clears the cache and suppresses requests.
func (c *Collection[T]) SetEnabled(ctx context.Context, enabled bool) error {
	c.mu.Lock()
	was := c.enabled
	c.enabled = enabled
	if !enabled {
		c.items = nil
		c.loading = false
		c.err = nil
	}
	c.mu.Unlock()

	if enabled && !was {
		return c.Refresh(ctx)
	}
	return nil
}

// Refresh fetches the full list and replaces the cache. An empty result is
// valid and distinct from the error state.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	items, err := api.Request[[]T](ctx, c.client,
		api.Descriptor{Method: "GET", Path: c.path},
		api.Options{RequiresOrg: true},
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.err = err
		return err
	}
	c.items = items
	return nil
}

// Items returns the cached records.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Loading reports whether a fetch is in flight.
func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the collection's last fetch or write error.
func (c *Collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Create posts a new record, then re-fetches the list.
func (c *Collection[T]) Create(ctx context.Context, input any) (T, error) {
	created, err := api.Request[T](ctx, c.client,
		api.Descriptor{Method: "POST", Path: c.path, Body: input},
		api.Options{RequiresOrg: true},
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return created, c.Refresh(ctx)
}

// Update puts changes to the record with the given id, then re-fetches.
func (c *Collection[T]) Update(ctx context.Context, id string, input any) (T, error) {
	updated, err := api.Request[T](ctx, c.client,
		api.Descriptor{Method: "PUT", Path: c.path + "/" + id, Body: input},
		api.Options{RequiresOrg: true},
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, c.Refresh(ctx)
}

// Remove deletes the record with the given id, then re-fetches.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	err := c.client.Do(ctx,
		api.Descriptor{Method: "DELETE", Path: c.path + "/" + id},
		api.Options{RequiresOrg: true},
		nil,
	)
	if err != nil {
		return err
	}
	return c.Refresh(ctx)
}
