package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Project-Sylos/Canopy/internal/types"
	"github.com/Project-Sylos/Canopy/sdk"
)

// Server represents the HTTP API server
type Server struct {
	router     *chi.Mux
	canopy     *sdk.Canopy
	config     *types.APIConfig
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new API server
func NewServer(canopy *sdk.Canopy) *Server {
	router := NewRouter(canopy)

	s := &Server{
		router: router.SetupRoutes(),
		canopy: canopy,
		config: &canopy.GetConfig().API,
		logger: canopy.Logger(),
	}
	s.httpServer = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := s.Addr()
	s.logger.Info("starting Canopy server",
		"addr", addr,
		"categories", fmt.Sprintf("http://%s/categories/", addr),
		"health", fmt.Sprintf("http://%s/health", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// GetRouter returns the configured router
func (s *Server) GetRouter() *chi.Mux {
	return s.router
}

// Stop shuts the HTTP server down gracefully and closes the store
func (s *Server) Stop(ctx context.Context) error {
	shutdownErr := s.httpServer.Shutdown(ctx)
	if err := s.canopy.Close(); err != nil {
		return errors.Join(shutdownErr, fmt.Errorf("failed to close store: %w", err))
	}
	return shutdownErr
}
