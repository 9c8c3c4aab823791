// ABOUTME: Derived reads over a list of entities
// ABOUTME: Distinct produces the sorted set of values of one string field

package store

import "sort"

// Distinct returns the values produced by key across items, ascending, each once.
func Distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := key(item)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
