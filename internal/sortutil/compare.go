// Package sortutil holds the one comparator used by every product listing,
// parameterized by key and direction.
package sortutil

import (
	"cmp"
	"slices"
	"strings"

	"sahara-storefront/internal/domain"
)

// Comparator orders two values; a nil Comparator means "no ordering on this axis".
type Comparator[T any] func(a, b T) int

// By builds an ascending comparator from a key extractor.
func By[T any, K cmp.Ordered](key func(T) K) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Text compares strings case-insensitively, falling back to byte order so
// "a" and "A" still have a deterministic relative position.
func Text[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		ka, kb := key(a), key(b)
		if c := strings.Compare(strings.ToLower(ka), strings.ToLower(kb)); c != 0 {
			return c
		}
		return strings.Compare(ka, kb)
	}
}

// Direction applies dir: asc keeps c, desc reverses it, none drops the axis.
func (c Comparator[T]) Direction(dir domain.SortDirection) Comparator[T] {
	if c == nil {
		return nil
	}
	switch dir {
	case domain.SortAsc:
		return c
	case domain.SortDesc:
		return func(a, b T) int { return c(b, a) }
	}
	return nil
}

// Then chains comparators in precedence order, skipping nil axes.
// It returns nil when every axis is nil.
func Then[T any](cs ...Comparator[T]) Comparator[T] {
	live := make([]Comparator[T], 0, len(cs))
	for _, c := range cs {
		if c != nil {
			live = append(live, c)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return func(a, b T) int {
		for _, c := range live {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Sorted returns a stably sorted copy of items; a nil comparator keeps input order.
func Sorted[T any](items []T, c Comparator[T]) []T {
	out := slices.Clone(items)
	if c != nil {
		slices.SortStableFunc(out, c)
	}
	return out
}
