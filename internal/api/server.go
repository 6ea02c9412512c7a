package api

import (
	"context"
	"net/http"
	"time"

	"github.com/moovs/dataprep/internal/config"
	"github.com/moovs/dataprep/internal/runlog"
)

// Server wraps the HTTP server and its wired dependencies.
type Server struct {
	config   config.ServerConfig
	handlers *Handlers
	handler  http.Handler
	server   *http.Server
}

// NewServer creates the API server.
func NewServer(cfg *config.Config, runs *runlog.Store) *Server {
	handlers := NewHandlers(NewSessionStore(), runs, cfg)
	return &Server{
		config:   cfg.Server,
		handlers: handlers,
		handler:  SetupRoutes(handlers),
	}
}

// ListenAndServe starts the HTTP server. Timeouts are generous because
// uploads arrive as whole files.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
