// ABOUTME: Server orchestrator that wires storage, sessions and the web UI
// ABOUTME: Manages the HTTP server, health endpoint and graceful shutdown lifecycle

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/2389/bookmarkd/internal/bookmark"
	"github.com/2389/bookmarkd/internal/config"
	"github.com/2389/bookmarkd/internal/session"
	"github.com/2389/bookmarkd/internal/store"
	"github.com/2389/bookmarkd/internal/web"
)

// StoragePathEnv overrides storage.path from the config file
const StoragePathEnv = "BOOKMARKD_STORAGE_PATH"

// Server owns the bookmark store and serves the web UI over HTTP.
type Server struct {
	config     *config.Config
	repo       *bookmark.Repository
	sessions   *session.Manager
	httpServer *http.Server
	logger     *slog.Logger
}

// OpenBackend creates the storage backend selected by cfg.
func OpenBackend(cfg config.StorageConfig) (store.Backend[bookmark.Bookmark], error) {
	path := cfg.Path
	if envPath := os.Getenv(StoragePathEnv); envPath != "" {
		path = config.ExpandHome(envPath)
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryBackend[bookmark.Bookmark](), nil
	case config.BackendSQLite:
		b, err := store.NewSQLiteBackend[bookmark.Bookmark](path)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite storage: %w", err)
		}
		return b, nil
	case config.BackendFile, "":
		codec, err := store.CodecFor(cfg.Format, path)
		if err != nil {
			return nil, err
		}
		return store.NewFileBackend[bookmark.Bookmark](path, codec), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// OpenRepository opens the backend selected by cfg and loads it. The caller
// must Close the returned repository.
func OpenRepository(ctx context.Context, cfg config.StorageConfig) (*bookmark.Repository, error) {
	backend, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}

	s, err := store.Open[bookmark.Bookmark](ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return bookmark.NewRepository(s), nil
}

// New creates a Server. The store is loaded eagerly so a broken data file
// fails startup instead of the first request.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	repo, err := OpenRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(cfg.Session.TTL, cfg.Session.MaxSessions)

	ui, err := web.New(web.Config{
		Repository:    repo,
		Sessions:      sessions,
		Signer:        session.NewSigner([]byte(cfg.Session.Secret)),
		SecureCookies: cfg.Session.SecureCookies,
		Logger:        logger,
	})
	if err != nil {
		sessions.Close()
		_ = repo.Close()
		return nil, fmt.Errorf("creating web UI: %w", err)
	}

	s := &Server{
		config:   cfg,
		repo:     repo,
		sessions: sessions,
		logger:   logger.With("component", "server"),
	}

	mux := http.NewServeMux()

	// Health endpoint - no session required
	mux.HandleFunc("GET /health", s.handleHealth)

	ui.RegisterRoutes(mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("bookmark store loaded",
		"backend", cfg.Storage.Backend,
		"bookmarks", repo.Len(),
	)

	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Repository returns the bookmark repository backing the server.
func (s *Server) Repository() *bookmark.Repository {
	return s.repo
}

// Run listens on the configured address and serves until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		_ = s.gracefulShutdown()
		return fmt.Errorf("listening on %s: %w", s.config.Server.HTTPAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server, then releases sessions and the store.
// In-flight mutations finish before the store is closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	s.sessions.Close()
	errs = appendCloseError(errs, "store close", s.repo.Close())

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// handleHealth returns 200 OK if the server is running.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
