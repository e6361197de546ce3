package admin

import (
	"cmp"
	"strconv"
	"strings"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/sortutil"
)

// Column is a sortable admin table column.
type Column string

const (
	ColumnID       Column = "id"
	ColumnName     Column = "name"
	ColumnPrice    Column = "price"
	ColumnQuantity Column = "quantity"
)

// Order is the admin table's sort state.
type Order struct {
	Column    Column
	Direction domain.SortDirection
}

// DefaultOrder lists the newest products first.
func DefaultOrder() Order {
	return Order{Column: ColumnID, Direction: domain.SortDesc}
}

// ParseOrder reads column and direction from request parameters. Empty
// values fall back to DefaultOrder.
func ParseOrder(column, direction string) (Order, error) {
	o := DefaultOrder()
	if strings.TrimSpace(column) != "" {
		c, err := ParseColumn(column)
		if err != nil {
			return Order{}, err
		}
		o.Column = c
	}
	if strings.TrimSpace(direction) != "" {
		dir, err := domain.ParseSortDirection(direction)
		if err != nil {
			return Order{}, err
		}
		if dir == domain.SortNone {
			return Order{}, domain.Invalid("admin table needs a sort direction")
		}
		o.Direction = dir
	}
	return o, nil
}

func ParseColumn(raw string) (Column, error) {
	switch c := Column(strings.ToLower(strings.TrimSpace(raw))); c {
	case ColumnID, ColumnName, ColumnPrice, ColumnQuantity:
		return c, nil
	default:
		return "", domain.Invalid("unknown sort column %q", raw)
	}
}

// Toggle mirrors clicking a column header: the same ascending column flips
// to descending, anything else starts ascending.
func (o Order) Toggle(column Column) Order {
	if o.Column == column && o.Direction == domain.SortAsc {
		return Order{Column: column, Direction: domain.SortDesc}
	}
	return Order{Column: column, Direction: domain.SortAsc}
}

// Apply returns a sorted copy of items.
func (o Order) Apply(items []domain.CatalogItem) []domain.CatalogItem {
	return sortutil.Sorted(items, o.comparator())
}

func (o Order) comparator() sortutil.Comparator[domain.CatalogItem] {
	var c sortutil.Comparator[domain.CatalogItem]
	switch o.Column {
	case ColumnName:
		c = sortutil.Text(func(i domain.CatalogItem) string { return i.Name })
	case ColumnPrice:
		c = func(a, b domain.CatalogItem) int { return a.Price.Cmp(b.Price.Decimal) }
	case ColumnQuantity:
		c = sortutil.By(func(i domain.CatalogItem) int { return i.Quantity })
	default:
		c = compareIDs
	}
	return c.Direction(o.Direction)
}

// compareIDs orders numeric ids by value and anything else as text.
func compareIDs(a, b domain.CatalogItem) int {
	na, errA := strconv.ParseInt(a.ID.String(), 10, 64)
	nb, errB := strconv.ParseInt(b.ID.String(), 10, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}
