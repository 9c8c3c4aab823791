// ABOUTME: Field validation for bookmarks submitted through forms
// ABOUTME: Trims input, defaults the category and rejects unusable URLs

package bookmark

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultCategory is used when a bookmark is saved without one.
const DefaultCategory = "Uncategorized"

// Limits for free-form fields
const (
	MaxTitleLength    = 200
	MaxCategoryLength = 100
	MaxURLLength      = 2048
)

// ValidationError describes the first invalid field of a bookmark.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize trims b's fields, fills in defaults and validates the result.
// It returns a *ValidationError describing the first problem found.
func Normalize(b Bookmark) (Bookmark, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.URL = strings.TrimSpace(b.URL)
	b.Category = strings.TrimSpace(b.Category)

	if b.Category == "" {
		b.Category = DefaultCategory
	}

	if b.Title == "" {
		return b, &ValidationError{Field: "title", Message: "is required"}
	}
	if len(b.Title) > MaxTitleLength {
		return b, &ValidationError{Field: "title", Message: fmt.Sprintf("exceeds %d characters", MaxTitleLength)}
	}

	if b.URL == "" {
		return b, &ValidationError{Field: "url", Message: "is required"}
	}
	if len(b.URL) > MaxURLLength {
		return b, &ValidationError{Field: "url", Message: fmt.Sprintf("exceeds %d characters", MaxURLLength)}
	}
	u, err := url.Parse(b.URL)
	if err != nil {
		return b, &ValidationError{Field: "url", Message: "is not a valid URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return b, &ValidationError{Field: "url", Message: "must use http or https"}
	}
	if u.Host == "" {
		return b, &ValidationError{Field: "url", Message: "must include a host"}
	}

	if len(b.Category) > MaxCategoryLength {
		return b, &ValidationError{Field: "category", Message: fmt.Sprintf("exceeds %d characters", MaxCategoryLength)}
	}

	return b, nil
}
