// ABOUTME: Bookmark entity and its repository over the generic entity store
// ABOUTME: Adds category enumeration and title conflict checks on top of List

package bookmark

import (
	"context"

	"github.com/2389/bookmarkd/internal/store"
)

// Bookmark is a saved link.
type Bookmark struct {
	ID       int    `json:"id" yaml:"id" toml:"id"`
	Title    string `json:"title" yaml:"title" toml:"title"`
	URL      string `json:"url" yaml:"url" toml:"url"`
	Category string `json:"category" yaml:"category" toml:"category"`
}

// EntityID returns the store-assigned id.
func (b Bookmark) EntityID() int { return b.ID }

// WithID returns a copy of b carrying id.
func (b Bookmark) WithID(id int) Bookmark {
	b.ID = id
	return b
}

// Repository is the bookmark-specific view of an entity store.
type Repository struct {
	*store.EntityStore[Bookmark]
}

// NewRepository wraps s.
func NewRepository(s *store.EntityStore[Bookmark]) *Repository {
	return &Repository{EntityStore: s}
}

// Categories returns the distinct categories in use, ascending.
func (r *Repository) Categories() []string {
	return Categories(r.List())
}

// Categories returns the distinct categories of items, ascending.
func Categories(items []Bookmark) []string {
	return store.Distinct(items, func(b Bookmark) string { return b.Category })
}

// TitleConflict reports whether a bookmark other than exceptID already uses title.
func (r *Repository) TitleConflict(title string, exceptID int) bool {
	for _, b := range r.List() {
		if b.Title == title && b.ID != exceptID {
			return true
		}
	}
	return false
}

// Create validates b and adds it under a new id.
func (r *Repository) Create(ctx context.Context, b Bookmark) (Bookmark, error) {
	clean, err := Normalize(b)
	if err != nil {
		return Bookmark{}, err
	}
	return r.Add(ctx, clean)
}

// Edit validates b and stores it under id. The id on b is ignored.
func (r *Repository) Edit(ctx context.Context, id int, b Bookmark) (Bookmark, error) {
	clean, err := Normalize(b)
	if err != nil {
		return Bookmark{}, err
	}
	clean.ID = id
	if err := r.Update(ctx, clean); err != nil {
		return Bookmark{}, err
	}
	return clean, nil
}
