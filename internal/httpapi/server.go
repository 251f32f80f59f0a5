// Package httpapi exposes the board over a JSON HTTP API
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thenoetrevino/tandem/internal/app"
	"github.com/thenoetrevino/tandem/internal/auth"
	"github.com/thenoetrevino/tandem/internal/config"
	"github.com/thenoetrevino/tandem/internal/idempotency"
)

// maxBodyBytes bounds every request body
const maxBodyBytes = 1 << 20

// Server routes HTTP requests to the application services
type Server struct {
	app    *app.App
	tokens *auth.TokenIssuer
	idem   idempotency.Store
	logger *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithIdempotency enables Idempotency-Key handling on task creation
func WithIdempotency(store idempotency.Store) Option {
	return func(s *Server) {
		s.idem = store
	}
}

// NewServer creates the API server
func NewServer(a *app.App, tokens *auth.TokenIssuer, opts ...Option) *Server {
	s := &Server{
		app:    a,
		tokens: tokens,
		logger: a.Logger.With("component", "http"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full route tree
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/token", s.handleToken)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.tokens))

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", s.handleListProjects)
				r.Post("/", s.handleCreateProject)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", s.handleGetProject)
					r.Patch("/", s.handleUpdateProject)
					r.Delete("/", s.handleDeleteProject)
					r.Get("/members", s.handleListMembers)
					r.Post("/members", s.handleAddMember)
					r.Get("/board", s.handleGetBoard)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", s.handleCreateTask)
				r.Post("/reorder", s.handleReorder)
				r.Get("/{taskID}", s.handleGetTask)
				r.Patch("/{taskID}", s.handleUpdateTask)
				r.Delete("/{taskID}", s.handleDeleteTask)
			})
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return s.Serve(ctx, ln, cfg)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener, cfg config.ServerConfig) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
