package sortutil

import (
	"testing"

	"sahara-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
)

type row struct {
	name string
	n    int
}

func TestThen_NameThenNumber(t *testing.T) {
	rows := []row{{"b", 1}, {"a", 2}, {"a", 1}}
	c := Then(
		Text(func(r row) string { return r.name }).Direction(domain.SortAsc),
		By(func(r row) int { return r.n }).Direction(domain.SortDesc),
	)
	got := Sorted(rows, c)
	assert.Equal(t, []row{{"a", 2}, {"a", 1}, {"b", 1}}, got)
	assert.Equal(t, row{"b", 1}, rows[0], "input must not be reordered")
}

func TestDirection_NoneDropsAxis(t *testing.T) {
	c := Then(By(func(r row) int { return r.n }).Direction(domain.SortNone))
	assert.Nil(t, c)

	rows := []row{{"z", 3}, {"y", 1}}
	assert.Equal(t, rows, Sorted(rows, c))
}

func TestText_CaseInsensitive(t *testing.T) {
	rows := []row{{"beta", 0}, {"Alpha", 0}, {"alpha", 0}}
	got := Sorted(rows, Text(func(r row) string { return r.name }).Direction(domain.SortAsc))
	assert.Equal(t, []row{{"Alpha", 0}, {"alpha", 0}, {"beta", 0}}, got)
}
