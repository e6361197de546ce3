package query

import (
	"strings"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/sortutil"
)

// Apply returns the items q selects, in q's order. Filtering and sorting
// always run here, over the fetched list, even when the catalog service
// already honoured the forwarded parameters; both steps are idempotent.
func Apply(q domain.CatalogQuery, items []domain.CatalogItem) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(items))
	for _, item := range items {
		if Matches(q, item) {
			out = append(out, item)
		}
	}
	return sortutil.Sorted(out, Comparator(q.Sort))
}

// Matches reports whether item passes q's search term and filters.
func Matches(q domain.CatalogQuery, item domain.CatalogItem) bool {
	f := q.Filter
	if f.MinPrice.Valid && item.Price.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && item.Price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, domain.CategoryAll) && !strings.EqualFold(c, item.Category) {
		return false
	}
	if f.InStock && !item.InStock() {
		return false
	}
	return matchesSearch(q.SearchTerm, item)
}

func matchesSearch(term string, item domain.CatalogItem) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	fields := append([]string{item.Name, item.Category, item.Color}, item.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

var (
	byName  = sortutil.Text(func(i domain.CatalogItem) string { return i.Name })
	byPrice = sortutil.Comparator[domain.CatalogItem](func(a, b domain.CatalogItem) int {
		return a.Price.Cmp(b.Price.Decimal)
	})
)

// Comparator orders by name first and breaks ties by price. Axes set to
// none are skipped; a nil result keeps the service's order.
func Comparator(s domain.SortOptions) sortutil.Comparator[domain.CatalogItem] {
	return sortutil.Then(byName.Direction(s.Name), byPrice.Direction(s.Price))
}
