// Package web exposes the photo pipeline over a JSON HTTP API.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/photovault/photovault/internal/config"
	"github.com/photovault/photovault/internal/enhance"
	"github.com/photovault/photovault/internal/facedetect"
	"github.com/photovault/photovault/internal/facerecog"
	"github.com/photovault/photovault/internal/montage"
	"github.com/photovault/photovault/internal/rectdetect"
	"github.com/photovault/photovault/internal/storage"
	"github.com/photovault/photovault/internal/web/middleware"
)

// Services are the pipeline dependencies the handlers work with. Wiring
// them explicitly keeps handlers testable against fakes.
type Services struct {
	Store    storage.Storage
	Detector facedetect.Detector
	Gallery  *facerecog.Gallery
	Rect     *rectdetect.Detector
	Enhancer *enhance.Enhancer
	Composer *montage.Composer
}

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	services   Services
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, port int, host string, services Services) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:   cfg,
		router:   r,
		services: services,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for large uploads and montages
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
