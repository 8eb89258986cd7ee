// Package collection provides generic, functional-style helpers for slices.
//
//	ids := collection.Map(images, func(i models.ProductImage) uint { return i.ID })
//	byOrder := collection.GroupBy(lines, func(l OrderLine) uint { return l.OrderID })
package collection

// Map transforms each element of slice s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Count returns how many elements satisfy fn.
func Count[T any](s []T, fn func(T) bool) int {
	n := 0
	for _, v := range s {
		if fn(v) {
			n++
		}
	}
	return n
}

// Reduce folds s into a single value starting from initial.
func Reduce[T, R any](s []T, initial R, fn func(carry R, item T) R) R {
	acc := initial
	for _, v := range s {
		acc = fn(acc, v)
	}
	return acc
}

// Group is one bucket produced by GroupBy.
type Group[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy buckets s by key. Groups appear in the order their first element
// appears in s, and items keep their relative order.
func GroupBy[T any, K comparable](s []T, key func(T) K) []Group[K, T] {
	var groups []Group[K, T]
	index := make(map[K]int)
	for _, v := range s {
		k := key(v)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, v)
	}
	return groups
}
