package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/mpolasek/faceshot/internal/web/handlers"
	"github.com/mpolasek/faceshot/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	eventsHandler := handlers.NewEventsHandler(s.workspace)
	sessionsHandler := handlers.NewSessionsHandler(s.sessions)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS())

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStation(s.config.Station.Token))

			// Organizer workspace
			r.Get("/me", eventsHandler.Me)
			r.Get("/events", eventsHandler.List)
			r.Post("/events", eventsHandler.Create)

			// Attendee capture sessions
			r.Post("/sessions", sessionsHandler.Create)
			r.Get("/sessions/{id}", sessionsHandler.Get)
			r.Post("/sessions/{id}/capture", sessionsHandler.Capture)
			r.Post("/sessions/{id}/retake", sessionsHandler.Retake)
			r.Post("/sessions/{id}/search", sessionsHandler.Search)
			r.Get("/sessions/{id}/events", sessionsHandler.Events)
			r.Delete("/sessions/{id}", sessionsHandler.Delete)
		})
	})
}
