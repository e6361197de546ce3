package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type SortDirection string

const (
	SortNone SortDirection = "none"
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts the select values used by the shop bar; empty means none.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortNone:
		return SortNone, nil
	case SortAsc, "ascending":
		return SortAsc, nil
	case SortDesc, "descending":
		return SortDesc, nil
	}
	return "", Invalid("unknown sort direction %q", s)
}

// SortOptions holds both sort axes. When both are set, name orders first and price breaks ties.
type SortOptions struct {
	Name  SortDirection `json:"name"`
	Price SortDirection `json:"price"`
}

// CategoryAll matches every category.
const CategoryAll = "all"

// FilterOptions bounds are inclusive; an invalid NullDecimal means unbounded.
type FilterOptions struct {
	MinPrice decimal.NullDecimal `json:"minPrice"`
	MaxPrice decimal.NullDecimal `json:"maxPrice"`
	Category string              `json:"category"`
	InStock  bool                `json:"inStock"`
}

// CatalogQuery is the composed search+sort+filter descriptor. Values are
// never mutated after publication; every change produces a new Revision.
type CatalogQuery struct {
	Revision   uint64        `json:"revision"`
	SearchTerm string        `json:"searchTerm"`
	Sort       SortOptions   `json:"sort"`
	Filter     FilterOptions `json:"filter"`
}

func DefaultSort() SortOptions {
	return SortOptions{Name: SortNone, Price: SortNone}
}

func DefaultFilters() FilterOptions {
	return FilterOptions{Category: CategoryAll}
}

// DefaultQuery is the descriptor a fresh session starts with.
func DefaultQuery() CatalogQuery {
	return CatalogQuery{Sort: DefaultSort(), Filter: DefaultFilters()}
}
