package api

import (
	"github.com/go-chi/chi/v5"

	alertsapi "github.com/good-yellow-bee/alerthub/internal/api/alerts"
	"github.com/good-yellow-bee/alerthub/internal/api/directory"
	"github.com/good-yellow-bee/alerthub/internal/api/inbox"
	"github.com/good-yellow-bee/alerthub/internal/api/middleware"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.PrometheusMiddleware)
	r.Use(middleware.Recoverer)

	directoryHandler := directory.NewHandler(s.storage)
	alertsHandler := alertsapi.NewHandler(s.service, s.engine)
	inboxHandler := inbox.NewHandler(s.service)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/directory", func(r chi.Router) {
			r.Post("/organizations", directoryHandler.CreateOrganization)
			r.Get("/organizations", directoryHandler.ListOrganizations)
			r.Post("/teams", directoryHandler.CreateTeam)
			r.Get("/teams", directoryHandler.ListTeams)
			r.Post("/users", directoryHandler.CreateUser)
			r.Get("/users", directoryHandler.ListUsers)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", alertsHandler.Create)
			r.Get("/", alertsHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", alertsHandler.GetByID)
				r.Put("/", alertsHandler.Update)
				r.Delete("/", alertsHandler.Archive)
			})
		})

		r.Get("/analytics", alertsHandler.Analytics)
		r.Post("/reminders/trigger", alertsHandler.TriggerReminders)

		r.Route("/inbox/{userID}", func(r chi.Router) {
			r.Get("/alerts", inboxHandler.VisibleAlerts)
			r.Get("/alerts/snoozed", inboxHandler.SnoozedAlerts)
			r.Put("/alerts/{alertID}/read", inboxHandler.MarkRead)
			r.Put("/alerts/{alertID}/unread", inboxHandler.MarkUnread)
			r.Put("/alerts/{alertID}/snooze", inboxHandler.Snooze)
		})
	})

	// Health probes (public)
	r.Get("/healthz", s.healthHandler.Health)
	r.Get("/healthz/live", s.healthHandler.Live)
	r.Get("/healthz/ready", s.healthHandler.Ready)

	return r
}
