// ABOUTME: Bookmark web UI: routing, visitor sessions and CSRF protection
// ABOUTME: Translates HTTP requests into repository calls and session Query updates

package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389/bookmarkd/internal/bookmark"
	"github.com/2389/bookmarkd/internal/session"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "bookmarkd_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "bookmarkd_csrf"

	// sessionTokenLifetime bounds how long a session cookie is accepted.
	// The server-side session usually expires much sooner.
	sessionTokenLifetime = 7 * 24 * time.Hour
)

// Config holds the collaborators of the web UI
type Config struct {
	Repository *bookmark.Repository
	Sessions   *session.Manager
	Signer     *session.Signer

	// SecureCookies marks cookies Secure even when TLS terminates upstream
	SecureCookies bool

	Logger *slog.Logger
}

// Handler serves the bookmark UI
type Handler struct {
	repo     *bookmark.Repository
	sessions *session.Manager
	signer   *session.Signer
	secure   bool
	logger   *slog.Logger
	pages    pages
	about    template.HTML
}

// New creates a Handler. It fails if the embedded templates or about page
// cannot be parsed.
func New(cfg Config) (*Handler, error) {
	if cfg.Repository == nil || cfg.Sessions == nil || cfg.Signer == nil {
		return nil, errors.New("web: repository, sessions and signer are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	about, err := renderAbout()
	if err != nil {
		return nil, fmt.Errorf("rendering about page: %w", err)
	}

	return &Handler{
		repo:     cfg.Repository,
		sessions: cfg.Sessions,
		signer:   cfg.Signer,
		secure:   cfg.SecureCookies,
		logger:   logger.With("component", "web"),
		pages:    p,
		about:    about,
	}, nil
}

// RegisterRoutes registers all UI routes on the given mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /about", h.handleAbout)

	// Listing
	mux.HandleFunc("GET /bookmarks", h.handleList)
	mux.HandleFunc("GET /bookmarks/partial", h.handlePartial)
	mux.HandleFunc("GET /bookmarks/{id}", h.handleDetails)

	// Create, edit, delete
	mux.HandleFunc("GET /bookmarks/new", h.handleNewForm)
	mux.HandleFunc("POST /bookmarks/new", h.handleCreate)
	mux.HandleFunc("GET /bookmarks/edit", h.handleEditForm)
	mux.HandleFunc("POST /bookmarks/edit", h.handleEdit)
	mux.HandleFunc("POST /bookmarks/delete", h.handleDelete)
	mux.HandleFunc("GET /bookmarks/conflict", h.handleTitleConflict)

	// List preferences
	mux.HandleFunc("POST /bookmarks/sort", h.handleToggleSort)
	mux.HandleFunc("POST /bookmarks/group/titles", h.handleGroupByTitles)
	mux.HandleFunc("POST /bookmarks/group/categories", h.handleGroupByCategories)
	mux.HandleFunc("POST /bookmarks/search/toggle", h.handleToggleSearch)
	mux.HandleFunc("POST /bookmarks/search/text", h.handleSearchText)
	mux.HandleFunc("POST /bookmarks/search/category", h.handleSearchCategory)

	h.logger.Info("bookmark routes registered")
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/bookmarks", http.StatusSeeOther)
}

// loadSession returns the visitor's session, starting a new one (and setting
// its cookie) when the cookie is missing, invalid or refers to an expired session.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (string, session.State) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := h.signer.Verify(cookie.Value); err == nil {
			if state, ok := h.sessions.Get(id); ok {
				return id, state
			}
		}
	}

	id, state := h.sessions.Create()
	token, err := h.signer.Sign(id, sessionTokenLifetime)
	if err != nil {
		h.logger.Error("failed to sign session token", "error", err)
		return id, state
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTokenLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id, state
}

// updateSession applies fn to the session. A session that expired in the
// meantime is left alone; the next request starts a fresh one.
func (h *Handler) updateSession(id string, fn func(session.State) session.State) session.State {
	state, ok := h.sessions.Update(id, fn)
	if !ok {
		h.logger.Debug("session vanished before update", "session", id)
	}
	return state
}

// ensureCSRFToken returns the visitor's CSRF token, issuing a new cookie if
// none is present
func (h *Handler) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		h.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return token
}

// validateCSRF checks the CSRF token from form against cookie
func (h *Handler) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		// Also check header for script requests
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// requireCSRF parses the form and rejects the request if the CSRF token is
// missing or wrong. It returns false when a response has been written.
func (h *Handler) requireCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return false
	}
	if !h.validateCSRF(r) {
		http.Error(w, "Invalid request, please reload the page", http.StatusForbidden)
		return false
	}
	return true
}

// serverError logs err and writes a generic 500 response
func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, "An error occurred", http.StatusInternalServerError)
}

// writeJSON writes v as a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
