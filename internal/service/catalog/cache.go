// Package catalog holds the storefront's snapshot of the item catalog.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/logging"
	"sahara-storefront/internal/metrics"
	"sahara-storefront/internal/notify"
	"sahara-storefront/internal/service/query"
)

type lister interface {
	List(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error)
}

// State is what subscribers receive after every applied fetch or failure.
type State struct {
	Query     domain.CatalogQuery
	Items     []domain.CatalogItem
	Err       error
	FetchedAt time.Time
}

// Cache is the ItemCatalogCache: the last successfully fetched item list,
// replaced wholesale on each fetch. A failed fetch keeps the previous list
// and raises an error indicator instead.
type Cache struct {
	repo   lister
	logger logrus.FieldLogger

	mu        sync.RWMutex
	items     []domain.CatalogItem
	byID      map[domain.ItemID]domain.CatalogItem
	applied   domain.CatalogQuery
	last      domain.CatalogQuery
	lastErr   error
	fetchedAt time.Time
	loaded    bool

	// Stale-response guard: newest descriptor revision submitted, and the
	// request sequence of the last applied response.
	submittedSeq   uint64
	appliedSeq     uint64
	newestRevision uint64

	changes notify.Hub[State]
}

func New(repo lister, logger logrus.FieldLogger) *Cache {
	return &Cache{
		repo:    repo,
		logger:  logging.OrDiscard(logger),
		byID:    map[domain.ItemID]domain.CatalogItem{},
		applied: domain.DefaultQuery(),
		last:    domain.DefaultQuery(),
	}
}

// Fetch lists the catalog for q and, unless the response was superseded,
// replaces the snapshot. It returns the items q selects.
//
// A response is discarded with domain.ErrStaleResponse when a newer
// descriptor revision has been submitted since, or when a later request
// has already been applied. Discarded responses, failed or not, never
// touch the snapshot or the error indicator.
func (c *Cache) Fetch(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error) {
	c.mu.Lock()
	c.submittedSeq++
	seq := c.submittedSeq
	if q.Revision > c.newestRevision {
		c.newestRevision = q.Revision
	}
	c.last = q
	c.mu.Unlock()

	start := time.Now()
	items, err := c.repo.List(ctx, q)
	elapsed := time.Since(start)

	c.mu.Lock()
	if q.Revision < c.newestRevision || seq < c.appliedSeq {
		newest := c.newestRevision
		c.mu.Unlock()
		metrics.RecordCatalogFetch("stale", elapsed)
		c.logger.WithFields(logrus.Fields{"revision": q.Revision, "newest": newest, "seq": seq}).Debug("catalog cache: discarded superseded response")
		return nil, errors.Wrapf(domain.ErrStaleResponse, "catalog revision %d", q.Revision)
	}
	if err != nil {
		c.lastErr = err
		state := c.stateLocked()
		c.mu.Unlock()
		metrics.RecordCatalogFetch("failed", elapsed)
		c.logger.WithError(err).WithField("revision", q.Revision).Warn("catalog cache: fetch failed, keeping previous snapshot")
		c.changes.Publish(state)
		return nil, err
	}

	snapshot := make([]domain.CatalogItem, len(items))
	copy(snapshot, items)
	byID := make(map[domain.ItemID]domain.CatalogItem, len(snapshot))
	for _, item := range snapshot {
		byID[item.ID] = item
	}
	c.items = snapshot
	c.byID = byID
	c.applied = q
	c.appliedSeq = seq
	c.lastErr = nil
	c.fetchedAt = time.Now()
	c.loaded = true
	state := c.stateLocked()
	c.mu.Unlock()

	metrics.RecordCatalogFetch("applied", elapsed)
	c.logger.WithFields(logrus.Fields{"revision": q.Revision, "count": len(snapshot)}).Debug("catalog cache: snapshot replaced")
	c.changes.Publish(state)
	return state.Items, nil
}

// Refetch re-runs the last submitted fetch, e.g. after an admin change.
func (c *Cache) Refetch(ctx context.Context) ([]domain.CatalogItem, error) {
	c.mu.RLock()
	q := c.last
	c.mu.RUnlock()
	return c.Fetch(ctx, q)
}

// Items returns the snapshot with its descriptor applied.
func (c *Cache) Items() []domain.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return query.Apply(c.applied, c.items)
}

// All returns the unfiltered snapshot in service order.
func (c *Cache) All() []domain.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup finds an item in the snapshot.
func (c *Cache) Lookup(id domain.ItemID) (domain.CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.byID[id]
	return item, ok
}

// Stock returns available quantity per item id, used to bound cart quantity choices.
func (c *Cache) Stock() map[domain.ItemID]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[domain.ItemID]int, len(c.byID))
	for id, item := range c.byID {
		out[id] = item.Quantity
	}
	return out
}

// Err is the error indicator: the failure of the most recent applicable
// fetch, or nil once a later fetch succeeds.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Loaded reports whether any fetch has succeeded yet.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// State returns the current view of the cache.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

// Subscribe registers fn for snapshot replacements and fetch failures.
func (c *Cache) Subscribe(fn func(State)) func() {
	return c.changes.Subscribe(fn)
}

func (c *Cache) stateLocked() State {
	return State{
		Query:     c.applied,
		Items:     query.Apply(c.applied, c.items),
		Err:       c.lastErr,
		FetchedAt: c.fetchedAt,
	}
}
