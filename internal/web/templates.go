// ABOUTME: Template rendering functions for the bookmark UI
// ABOUTME: Parses embedded templates once and renders pages and the list partial

package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/2389/bookmarkd/internal/bookmark"
)

// pages holds the parsed templates, one per page
type pages struct {
	list    *template.Template
	details *template.Template
	form    *template.Template
	about   *template.Template
	partial *template.Template
}

func parsePages() (pages, error) {
	var p pages
	var err error

	parse := func(files ...string) *template.Template {
		if err != nil {
			return nil
		}
		var t *template.Template
		t, err = template.ParseFS(templateFS, files...)
		return t
	}

	p.list = parse("templates/base.html", "templates/list.html", "templates/partials/bookmarks.html")
	p.details = parse("templates/base.html", "templates/details.html")
	p.form = parse("templates/base.html", "templates/form.html")
	p.about = parse("templates/base.html", "templates/about.html")
	p.partial = parse("templates/partials/bookmarks.html")

	return p, err
}

// renderAbout converts the embedded about document to HTML
func renderAbout() (template.HTML, error) {
	md, err := docsFS.ReadFile("docs/about.md")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := goldmark.Convert(md, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Template data types

// listView is the rendered state of the bookmark list
type listView struct {
	Query      bookmark.Query
	Categories []string
	Bookmarks  []bookmark.Bookmark
	Groups     []bookmark.Group
	Count      int
	Total      int
	CSRFToken  string
}

type listPageData struct {
	Title     string
	List      listView
	CSRFToken string
}

type detailsPageData struct {
	Title     string
	Bookmark  bookmark.Bookmark
	CSRFToken string
}

type formPageData struct {
	Title      string
	Heading    string
	Action     string
	Bookmark   bookmark.Bookmark
	Categories []string
	Error      string
	Field      string
	CSRFToken  string
}

type aboutPageData struct {
	Title     string
	Content   template.HTML
	CSRFToken string
}

func (h *Handler) render(w http.ResponseWriter, status int, tmpl *template.Template, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("failed to render "+name, "error", err)
	}
}

// renderListPage renders the full bookmark list page
func (h *Handler) renderListPage(w http.ResponseWriter, view listView, csrfToken string) {
	view.CSRFToken = csrfToken
	h.render(w, http.StatusOK, h.pages.list, "list page", listPageData{
		Title:     "Bookmarks",
		List:      view,
		CSRFToken: csrfToken,
	})
}

// renderListPartial renders only the list fragment polled by the page
func (h *Handler) renderListPartial(w http.ResponseWriter, view listView, csrfToken string) {
	view.CSRFToken = csrfToken
	h.render(w, http.StatusOK, h.pages.partial, "bookmark list", view)
}

// renderDetails renders a single bookmark
func (h *Handler) renderDetails(w http.ResponseWriter, b bookmark.Bookmark, csrfToken string) {
	h.render(w, http.StatusOK, h.pages.details, "details page", detailsPageData{
		Title:     b.Title,
		Bookmark:  b,
		CSRFToken: csrfToken,
	})
}

// renderForm renders the create or edit form. A non-nil verr re-renders the
// submitted values with the validation message.
func (h *Handler) renderForm(w http.ResponseWriter, data formPageData, verr *bookmark.ValidationError) {
	status := http.StatusOK
	if verr != nil {
		status = http.StatusUnprocessableEntity
		data.Error = verr.Message
		data.Field = verr.Field
	}
	data.Title = data.Heading
	data.Categories = h.repo.Categories()
	h.render(w, status, h.pages.form, "bookmark form", data)
}

// renderAboutPage renders the about page
func (h *Handler) renderAboutPage(w http.ResponseWriter, csrfToken string) {
	h.render(w, http.StatusOK, h.pages.about, "about page", aboutPageData{
		Title:     "About",
		Content:   h.about,
		CSRFToken: csrfToken,
	})
}
