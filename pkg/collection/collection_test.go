package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []int{2, 4, 6}, Map([]int{1, 2, 3}, func(v int) int { return v * 2 }))
	assert.Empty(t, Map([]int(nil), func(v int) int { return v }))
}

func TestCountAndReduce(t *testing.T) {
	s := []int{1, 2, 3, 4}
	assert.Equal(t, 2, Count(s, func(v int) bool { return v%2 == 0 }))
	assert.Equal(t, 10, Reduce(s, 0, func(acc, v int) int { return acc + v }))
}

func TestGroupByKeepsFirstSeenOrder(t *testing.T) {
	type line struct {
		order uint
		qty   int
	}
	lines := []line{{7, 1}, {3, 2}, {7, 3}, {5, 4}, {3, 5}}

	groups := GroupBy(lines, func(l line) uint { return l.order })

	assert.Len(t, groups, 3)
	assert.Equal(t, []uint{7, 3, 5}, Map(groups, func(g Group[uint, line]) uint { return g.Key }))
	assert.Equal(t, []line{{7, 1}, {7, 3}}, groups[0].Items)
	assert.Equal(t, []line{{3, 2}, {3, 5}}, groups[1].Items)
}
