// ABOUTME: HTTP handlers that change how the visitor's bookmark list is shown
// ABOUTME: Each handler replaces the session Query and redirects back to the list

package web

import (
	"net/http"

	"github.com/2389/bookmarkd/internal/bookmark"
	"github.com/2389/bookmarkd/internal/session"
)

// updateQuery applies fn to the session's Query and redirects to the list.
// SeenVersion is reset so the next poll re-renders with the new Query.
func (h *Handler) updateQuery(w http.ResponseWriter, r *http.Request, fn func(bookmark.Query) bookmark.Query) {
	sid, _ := h.loadSession(w, r)
	if !h.requireCSRF(w, r) {
		return
	}

	h.updateSession(sid, func(s session.State) session.State {
		s.Query = fn(s.Query)
		s.SeenVersion = 0
		return s
	})

	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

func (h *Handler) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	h.updateQuery(w, r, bookmark.Query.ToggleSort)
}

func (h *Handler) handleGroupByTitles(w http.ResponseWriter, r *http.Request) {
	h.updateQuery(w, r, bookmark.Query.GroupedByTitles)
}

func (h *Handler) handleGroupByCategories(w http.ResponseWriter, r *http.Request) {
	h.updateQuery(w, r, bookmark.Query.GroupedByCategories)
}

func (h *Handler) handleToggleSearch(w http.ResponseWriter, r *http.Request) {
	h.updateQuery(w, r, bookmark.Query.ToggleSearch)
}

func (h *Handler) handleSearchText(w http.ResponseWriter, r *http.Request) {
	h.updateQuery(w, r, func(q bookmark.Query) bookmark.Query {
		return q.WithText(r.FormValue("value"))
	})
}

func (h *Handler) handleSearchCategory(w http.ResponseWriter, r *http.Request) {
	h.updateQuery(w, r, func(q bookmark.Query) bookmark.Query {
		return q.WithCategory(r.FormValue("value"))
	})
}
