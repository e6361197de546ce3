// Package query owns the shop's search, sort and filter state and composes it
// into one domain.CatalogQuery descriptor.
//
// The engine never fetches. Consumers subscribe to descriptor changes and
// decide whether to refetch (see catalog.Orchestrator); keeping the trigger
// outside the engine is what prevents refetch loops.
package query

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/notify"
)

// Engine holds the three query axes for one session.
type Engine struct {
	mu      sync.Mutex
	current domain.CatalogQuery
	changes notify.Hub[domain.CatalogQuery]
}

func NewEngine() *Engine {
	return &Engine{current: domain.DefaultQuery()}
}

// Descriptor returns the current descriptor.
func (e *Engine) Descriptor() domain.CatalogQuery {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Subscribe registers fn for every new descriptor. It returns the unsubscribe func.
func (e *Engine) Subscribe(fn func(domain.CatalogQuery)) func() {
	return e.changes.Subscribe(fn)
}

func (e *Engine) SetSearchTerm(term string) {
	e.update(func(q *domain.CatalogQuery) {
		q.SearchTerm = strings.TrimSpace(term)
	})
}

func (e *Engine) SetSort(s domain.SortOptions) error {
	name, err := domain.ParseSortDirection(string(s.Name))
	if err != nil {
		return err
	}
	price, err := domain.ParseSortDirection(string(s.Price))
	if err != nil {
		return err
	}
	e.update(func(q *domain.CatalogQuery) {
		q.Sort = domain.SortOptions{Name: name, Price: price}
	})
	return nil
}

func (e *Engine) SetSortName(dir string) error {
	d, err := domain.ParseSortDirection(dir)
	if err != nil {
		return err
	}
	e.update(func(q *domain.CatalogQuery) { q.Sort.Name = d })
	return nil
}

func (e *Engine) SetSortPrice(dir string) error {
	d, err := domain.ParseSortDirection(dir)
	if err != nil {
		return err
	}
	e.update(func(q *domain.CatalogQuery) { q.Sort.Price = d })
	return nil
}

// SetFilters replaces the whole filter slice after validation.
func (e *Engine) SetFilters(f domain.FilterOptions) error {
	f, err := normalizeFilters(f)
	if err != nil {
		return err
	}
	e.update(func(q *domain.CatalogQuery) { q.Filter = f })
	return nil
}

// SetPriceRange takes the raw min/max inputs; an empty string leaves that side unbounded.
func (e *Engine) SetPriceRange(minPrice, maxPrice string) error {
	lo, err := parseBound(minPrice)
	if err != nil {
		return err
	}
	hi, err := parseBound(maxPrice)
	if err != nil {
		return err
	}
	if lo.Valid && hi.Valid && lo.Decimal.GreaterThan(hi.Decimal) {
		return domain.Invalid("min price %s above max price %s", lo.Decimal, hi.Decimal)
	}
	e.update(func(q *domain.CatalogQuery) {
		q.Filter.MinPrice = lo
		q.Filter.MaxPrice = hi
	})
	return nil
}

func (e *Engine) SetCategory(category string) {
	e.update(func(q *domain.CatalogQuery) { q.Filter.Category = normalizeCategory(category) })
}

func (e *Engine) SetInStock(inStock bool) {
	e.update(func(q *domain.CatalogQuery) { q.Filter.InStock = inStock })
}

// ClearSearch resets only the search term.
func (e *Engine) ClearSearch() {
	e.update(func(q *domain.CatalogQuery) { q.SearchTerm = "" })
}

// ClearSort resets only the sort axes.
func (e *Engine) ClearSort() {
	e.update(func(q *domain.CatalogQuery) { q.Sort = domain.DefaultSort() })
}

// ClearFilters resets only the filter slice.
func (e *Engine) ClearFilters() {
	e.update(func(q *domain.CatalogQuery) { q.Filter = domain.DefaultFilters() })
}

// update applies fn to a copy, bumps the revision, publishes outside the lock.
func (e *Engine) update(fn func(q *domain.CatalogQuery)) {
	e.mu.Lock()
	next := e.current
	fn(&next)
	next.Revision = e.current.Revision + 1
	e.current = next
	e.mu.Unlock()

	e.changes.Publish(next)
}

func normalizeFilters(f domain.FilterOptions) (domain.FilterOptions, error) {
	for _, b := range []decimal.NullDecimal{f.MinPrice, f.MaxPrice} {
		if b.Valid && b.Decimal.IsNegative() {
			return f, domain.Invalid("price bound must not be negative")
		}
	}
	if f.MinPrice.Valid && f.MaxPrice.Valid && f.MinPrice.Decimal.GreaterThan(f.MaxPrice.Decimal) {
		return f, domain.Invalid("min price %s above max price %s", f.MinPrice.Decimal, f.MaxPrice.Decimal)
	}
	f.Category = normalizeCategory(f.Category)
	return f, nil
}

func normalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" || strings.EqualFold(c, domain.CategoryAll) {
		return domain.CategoryAll
	}
	return c
}

func parseBound(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	p, err := domain.ParsePrice(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(p.Decimal), nil
}

// ParseFilters builds FilterOptions from raw form values; empty bounds are unbounded.
func ParseFilters(minPrice, maxPrice, category string, inStock bool) (domain.FilterOptions, error) {
	lo, err := parseBound(minPrice)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	hi, err := parseBound(maxPrice)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return normalizeFilters(domain.FilterOptions{MinPrice: lo, MaxPrice: hi, Category: category, InStock: inStock})
}
