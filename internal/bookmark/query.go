// ABOUTME: Immutable list query (search, category filter, sort, grouping)
// ABOUTME: Applied as post-processing over a store snapshot, never inside the store

package bookmark

import (
	"sort"
	"strings"
)

// AllCategories disables the category filter.
const AllCategories = "*"

// Query describes how a visitor wants the bookmark list presented. Methods
// return modified copies; a Query is never changed in place.
type Query struct {
	Search        bool   // filters only apply while searching
	Text          string // lower-cased title substring
	Category      string // lower-cased category, or AllCategories
	GroupByTitles bool   // false groups the view by category
	SortAscending bool
}

// DefaultQuery lists everything by title, ascending.
func DefaultQuery() Query {
	return Query{
		Category:      AllCategories,
		GroupByTitles: true,
		SortAscending: true,
	}
}

// ToggleSearch flips search mode.
func (q Query) ToggleSearch() Query {
	q.Search = !q.Search
	return q
}

// ToggleSort flips the title sort direction.
func (q Query) ToggleSort() Query {
	q.SortAscending = !q.SortAscending
	return q
}

// GroupedByTitles returns q listing by title.
func (q Query) GroupedByTitles() Query {
	q.GroupByTitles = true
	return q
}

// GroupedByCategories returns q grouping by category.
func (q Query) GroupedByCategories() Query {
	q.GroupByTitles = false
	return q
}

// WithText sets the title search text.
func (q Query) WithText(text string) Query {
	q.Text = strings.ToLower(strings.TrimSpace(text))
	return q
}

// WithCategory sets the category filter; empty means all categories.
func (q Query) WithCategory(category string) Query {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = AllCategories
	}
	q.Category = category
	return q
}

// Apply filters and orders items according to q. items is not modified.
//
// Filters only apply while searching in title mode. Category grouping always
// lists titles ascending; the grouping itself is done by GroupByCategory.
func Apply(items []Bookmark, q Query) []Bookmark {
	out := make([]Bookmark, 0, len(items))

	filtering := q.Search && q.GroupByTitles
	for _, b := range items {
		if filtering && !matches(b, q) {
			continue
		}
		out = append(out, b)
	}

	ascending := q.SortAscending || !q.GroupByTitles
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
		if ti != tj {
			if ascending {
				return ti < tj
			}
			return ti > tj
		}
		return out[i].ID < out[j].ID
	})

	return out
}

func matches(b Bookmark, q Query) bool {
	if q.Text != "" && !strings.Contains(strings.ToLower(b.Title), q.Text) {
		return false
	}
	if q.Category != AllCategories && strings.ToLower(b.Category) != q.Category {
		return false
	}
	return true
}

// Group is one category section of the grouped view.
type Group struct {
	Category  string
	Bookmarks []Bookmark
}

// GroupByCategory splits items into categories, ascending, preserving the
// order of items within each group.
func GroupByCategory(items []Bookmark) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, b := range items {
		i, ok := index[b.Category]
		if !ok {
			i = len(groups)
			index[b.Category] = i
			groups = append(groups, Group{Category: b.Category})
		}
		groups[i].Bookmarks = append(groups[i].Bookmarks, b)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Category < groups[j].Category
	})
	return groups
}
