package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/photovault/photovault/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	facesHandler := handlers.NewFacesHandler(s.services.Detector, s.services.Gallery, s.config.Faces.MinConfidence)
	peopleHandler := handlers.NewPeopleHandler(s.services.Gallery)
	enhanceHandler := handlers.NewEnhanceHandler(s.config, s.services.Enhancer)
	scanHandler := handlers.NewScanHandler(s.services.Rect, s.services.Store)
	montageHandler := handlers.NewMontageHandler(s.services.Composer)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Faces
		r.Post("/faces/detect", facesHandler.Detect)
		r.Post("/faces/recognize", facesHandler.Recognize)

		// People (face gallery)
		r.Get("/people", peopleHandler.List)
		r.Post("/people/{id}/encodings", peopleHandler.AddEncoding)
		r.Delete("/people/{id}/encodings", peopleHandler.RemoveEncodings)

		// Enhancement
		r.Post("/enhance", enhanceHandler.Enhance)
		r.Post("/enhance/suggest", enhanceHandler.Suggest)

		// Scanned-page sub-photo detection
		r.Post("/scan/detect", scanHandler.Detect)
		r.Post("/scan/extract", scanHandler.Extract)

		// Montage
		r.Post("/montage", montageHandler.Compose)
	})
}
