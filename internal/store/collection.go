package store

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/owuorviny109/crmsync/internal/crm"
)

// Entity is any record with a unique numeric id.
type Entity interface {
	EntityID() int64
}

// Messages are the per-store fallback error strings, used whenever
// the server response carries no usable detail.
type Messages struct {
	FetchAll string
	FetchOne string
	Create   string
	Update   string
	Delete   string
}

// CollectionAPI binds a collection store to one entity's endpoints.
// A nil function marks an operation the entity does not support.
type CollectionAPI[T Entity, D any] struct {
	FetchAll func(ctx context.Context, params url.Values) (*crm.List[T], error)
	FetchOne func(ctx context.Context, id int64) (*T, error)
	Create   func(ctx context.Context, data D) (*T, error)
	Update   func(ctx context.Context, id int64, data D) (*T, error)
	Delete   func(ctx context.Context, id int64) error
}

// Pagination mirrors the server's page envelope from the last fetch.
type Pagination struct {
	Count    int
	Next     *string
	Previous *string
}

// CollectionConfig assembles a collection store for one entity kind.
type CollectionConfig[T Entity, D any] struct {
	API      CollectionAPI[T, D]
	Messages Messages

	// TrackPagination republishes the server's page envelope on
	// fetches that carry a page count.
	TrackPagination bool

	// ReconcileSelected refreshes the selected record when an update
	// lands on the same id.
	ReconcileSelected bool

	Logger *slog.Logger
}

// Collection caches one entity kind's records and keeps them
// consistent with the expected server outcome of each mutation
// without re-fetching. Each instance owns its state exclusively;
// concurrent actions on the same instance commit in completion order,
// last writer wins.
type Collection[T Entity, D any] struct {
	mu         sync.Mutex
	items      []T
	selected   *T
	pagination *Pagination
	loading    bool
	lastError  string

	api               CollectionAPI[T, D]
	messages          Messages
	trackPagination   bool
	reconcileSelected bool
	logger            *slog.Logger
}

// NewCollection creates an empty collection store.
func NewCollection[T Entity, D any](cfg CollectionConfig[T, D]) *Collection[T, D] {
	return &Collection[T, D]{
		api:               cfg.API,
		messages:          cfg.Messages,
		trackPagination:   cfg.TrackPagination,
		reconcileSelected: cfg.ReconcileSelected,
		logger:            cfg.Logger,
	}
}

const unsupportedMessage = "operation not supported"

// FetchAll replaces the whole collection with the server's result
// set.
func (c *Collection[T, D]) FetchAll(ctx context.Context, params url.Values) Result[T] {
	if c.api.FetchAll == nil {
		return failed[T](unsupportedMessage)
	}
	return c.fetchInto(ctx, func(ctx context.Context) (*crm.List[T], error) {
		return c.api.FetchAll(ctx, params)
	})
}

// FetchFrom replaces the collection from an alternate list endpoint
// (my_leads, overdue, ...) with the same contract as FetchAll.
func (c *Collection[T, D]) FetchFrom(ctx context.Context, fetch func(context.Context) (*crm.List[T], error)) Result[T] {
	return c.fetchInto(ctx, fetch)
}

func (c *Collection[T, D]) fetchInto(ctx context.Context, fetch func(context.Context) (*crm.List[T], error)) Result[T] {
	c.begin()

	list, err := fetch(ctx)
	if err != nil {
		return c.fail(err, c.messages.FetchAll)
	}

	c.mu.Lock()
	c.items = append([]T(nil), list.Results...)
	if c.trackPagination && list.Count > 0 {
		c.pagination = &Pagination{
			Count:    list.Count,
			Next:     list.Next,
			Previous: list.Previous,
		}
	}
	c.loading = false
	c.mu.Unlock()

	return succeeded[T](nil)
}

// FetchOne replaces the selected record; items are untouched.
func (c *Collection[T, D]) FetchOne(ctx context.Context, id int64) Result[T] {
	if c.api.FetchOne == nil {
		return failed[T](unsupportedMessage)
	}
	c.begin()

	record, err := c.api.FetchOne(ctx, id)
	if err != nil {
		return c.fail(err, c.messages.FetchOne)
	}

	c.mu.Lock()
	c.selected = record
	c.loading = false
	c.mu.Unlock()

	return succeeded(record)
}

// Create posts a new record and, on success, prepends it to the
// collection. Most-recent-first ordering is deliberate and diverges
// from server ordering once the server paginates or re-sorts.
func (c *Collection[T, D]) Create(ctx context.Context, data D) Result[T] {
	if c.api.Create == nil {
		return failed[T](unsupportedMessage)
	}
	c.begin()

	record, err := c.api.Create(ctx, data)
	if err != nil {
		return c.fail(err, c.messages.Create)
	}

	c.mu.Lock()
	c.items = append([]T{*record}, c.items...)
	c.loading = false
	c.mu.Unlock()

	return succeeded(record)
}

// Update patches a record and, on success, replaces the matching item
// in place. An id that is no longer cached is dropped silently; the
// server-side mutation still happened.
func (c *Collection[T, D]) Update(ctx context.Context, id int64, data D) Result[T] {
	if c.api.Update == nil {
		return failed[T](unsupportedMessage)
	}
	c.begin()

	record, err := c.api.Update(ctx, id, data)
	if err != nil {
		return c.fail(err, c.messages.Update)
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].EntityID() == (*record).EntityID() {
			c.items[i] = *record
			break
		}
	}
	if c.reconcileSelected && c.selected != nil && (*c.selected).EntityID() == (*record).EntityID() {
		c.selected = record
	}
	c.loading = false
	c.mu.Unlock()

	return succeeded(record)
}

// Delete removes a record server-side and filters it out of the
// collection. Deleting an id that is not cached is a local no-op.
func (c *Collection[T, D]) Delete(ctx context.Context, id int64) Result[T] {
	if c.api.Delete == nil {
		return failed[T](unsupportedMessage)
	}
	c.begin()

	if err := c.api.Delete(ctx, id); err != nil {
		return c.fail(err, c.messages.Delete)
	}

	c.mu.Lock()
	kept := c.items[:0]
	for _, item := range c.items {
		if item.EntityID() != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.loading = false
	c.mu.Unlock()

	return succeeded[T](nil)
}

// Items returns a copy of the cached collection.
func (c *Collection[T, D]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Selected returns a copy of the selected record, nil when absent.
// The selection is informational; it is reconciled with items only on
// update, and only when the store is configured to do so.
func (c *Collection[T, D]) Selected() *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	record := *c.selected
	return &record
}

// Where returns the cached records matching a predicate.
func (c *Collection[T, D]) Where(pred func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	var matched []T
	for _, item := range c.items {
		if pred(item) {
			matched = append(matched, item)
		}
	}
	return matched
}

// Loading reports whether an action is in flight.
func (c *Collection[T, D]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last action's error message. It stays visible until
// a later action on this store overwrites it.
func (c *Collection[T, D]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Pagination returns a copy of the last published page envelope, nil
// when the server never provided a page count.
func (c *Collection[T, D]) Pagination() *Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pagination == nil {
		return nil
	}
	page := *c.pagination
	return &page
}

func (c *Collection[T, D]) begin() {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
}

func (c *Collection[T, D]) fail(err error, fallback string) Result[T] {
	message := errorMessage(err, fallback)
	c.mu.Lock()
	c.lastError = message
	c.loading = false
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Debug("collection action failed", "error", err)
	}
	return failed[T](message)
}
