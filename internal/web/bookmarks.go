// ABOUTME: HTTP handlers for listing, viewing, creating, editing and deleting bookmarks
// ABOUTME: The bookmark being edited or deleted is the one last opened in the visitor's session

package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2389/bookmarkd/internal/bookmark"
	"github.com/2389/bookmarkd/internal/session"
	"github.com/2389/bookmarkd/internal/store"
)

// buildList applies q to the current collection and returns the view along
// with the version it was built from.
func (h *Handler) buildList(q bookmark.Query) (listView, store.Version) {
	items, version := h.repo.Current()
	result := bookmark.Apply(items, q)

	view := listView{
		Query:      q,
		Categories: bookmark.Categories(items),
		Count:      len(result),
		Total:      len(items),
	}
	if q.GroupByTitles {
		view.Bookmarks = result
	} else {
		view.Groups = bookmark.GroupByCategory(result)
	}
	return view, version
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	id, state := h.loadSession(w, r)
	csrfToken := h.ensureCSRFToken(w, r)

	view, version := h.buildList(state.Query)
	h.updateSession(id, func(s session.State) session.State {
		s = s.ClearCurrent()
		s.SeenVersion = version
		return s
	})

	h.renderListPage(w, view, csrfToken)
}

// handlePartial serves the list fragment. Without force=true it answers 204
// when nothing changed since the visitor's last render.
func (h *Handler) handlePartial(w http.ResponseWriter, r *http.Request) {
	id, state := h.loadSession(w, r)
	csrfToken := h.ensureCSRFToken(w, r)

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if !force && !h.repo.HasChanged(state.SeenVersion) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	view, version := h.buildList(state.Query)
	h.updateSession(id, func(s session.State) session.State {
		s.SeenVersion = version
		return s
	})

	h.renderListPartial(w, view, csrfToken)
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	sid, _ := h.loadSession(w, r)
	csrfToken := h.ensureCSRFToken(w, r)

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	}

	b, err := h.repo.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		h.updateSession(sid, session.State.ClearCurrent)
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, "failed to load bookmark", err)
		return
	}

	h.updateSession(sid, func(s session.State) session.State {
		s.CurrentID = b.ID
		s.CurrentTitle = b.Title
		return s
	})

	h.renderDetails(w, b, csrfToken)
}

func (h *Handler) handleNewForm(w http.ResponseWriter, r *http.Request) {
	sid, _ := h.loadSession(w, r)
	csrfToken := h.ensureCSRFToken(w, r)
	h.updateSession(sid, session.State.ClearCurrent)

	h.renderForm(w, formPageData{
		Heading:   "New bookmark",
		Action:    "/bookmarks/new",
		Bookmark:  bookmark.Bookmark{Category: bookmark.DefaultCategory},
		CSRFToken: csrfToken,
	}, nil)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.loadSession(w, r)
	if !h.requireCSRF(w, r) {
		return
	}

	submitted := bookmarkFromForm(r)
	created, err := h.repo.Create(r.Context(), submitted)
	var verr *bookmark.ValidationError
	if errors.As(err, &verr) {
		h.renderForm(w, formPageData{
			Heading:   "New bookmark",
			Action:    "/bookmarks/new",
			Bookmark:  submitted,
			CSRFToken: h.ensureCSRFToken(w, r),
		}, verr)
		return
	}
	if err != nil {
		h.serverError(w, "failed to create bookmark", err)
		return
	}

	h.logger.Info("bookmark created", "id", created.ID, "title", created.Title)
	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

func (h *Handler) handleEditForm(w http.ResponseWriter, r *http.Request) {
	sid, state := h.loadSession(w, r)
	csrfToken := h.ensureCSRFToken(w, r)

	if state.CurrentID == 0 {
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	}

	b, err := h.repo.Get(state.CurrentID)
	if errors.Is(err, store.ErrNotFound) {
		h.updateSession(sid, session.State.ClearCurrent)
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, "failed to load bookmark", err)
		return
	}

	h.renderForm(w, formPageData{
		Heading:   "Edit bookmark",
		Action:    "/bookmarks/edit",
		Bookmark:  b,
		CSRFToken: csrfToken,
	}, nil)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	sid, state := h.loadSession(w, r)
	if !h.requireCSRF(w, r) {
		return
	}

	if state.CurrentID == 0 {
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	}

	submitted := bookmarkFromForm(r)
	submitted.ID = state.CurrentID

	updated, err := h.repo.Edit(r.Context(), state.CurrentID, submitted)
	var verr *bookmark.ValidationError
	switch {
	case errors.As(err, &verr):
		h.renderForm(w, formPageData{
			Heading:   "Edit bookmark",
			Action:    "/bookmarks/edit",
			Bookmark:  submitted,
			CSRFToken: h.ensureCSRFToken(w, r),
		}, verr)
		return
	case errors.Is(err, store.ErrNotFound):
		h.updateSession(sid, session.State.ClearCurrent)
		http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
		return
	case err != nil:
		h.serverError(w, "failed to update bookmark", err)
		return
	}

	h.updateSession(sid, func(s session.State) session.State {
		s.CurrentTitle = updated.Title
		return s
	})

	h.logger.Info("bookmark updated", "id", updated.ID, "title", updated.Title)
	http.Redirect(w, r, fmt.Sprintf("/bookmarks/%d", updated.ID), http.StatusSeeOther)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sid, state := h.loadSession(w, r)
	if !h.requireCSRF(w, r) {
		return
	}

	if state.CurrentID != 0 {
		if err := h.repo.Delete(r.Context(), state.CurrentID); err != nil {
			h.serverError(w, "failed to delete bookmark", err)
			return
		}
		h.logger.Info("bookmark deleted", "id", state.CurrentID)
	}

	h.updateSession(sid, session.State.ClearCurrent)
	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

// handleTitleConflict reports whether another bookmark already uses the
// title. The bookmark open in the session is not counted against itself.
func (h *Handler) handleTitleConflict(w http.ResponseWriter, r *http.Request) {
	_, state := h.loadSession(w, r)
	title := r.URL.Query().Get("title")

	h.writeJSON(w, h.repo.TitleConflict(title, state.CurrentID))
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.loadSession(w, r)
	csrfToken := h.ensureCSRFToken(w, r)
	h.renderAboutPage(w, csrfToken)
}

// bookmarkFromForm reads the submitted fields without validating them
func bookmarkFromForm(r *http.Request) bookmark.Bookmark {
	return bookmark.Bookmark{
		Title:    r.FormValue("title"),
		URL:      r.FormValue("url"),
		Category: r.FormValue("category"),
	}
}
