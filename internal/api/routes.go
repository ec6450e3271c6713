package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ashureev/crushcourt/internal/identity"
)

// RegisterRoutes registers the JSON API and the court pages.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(identity.RequireParticipant)

			r.Get("/me", h.GetMe)

			r.Route("/records", func(r chi.Router) {
				r.Post("/", h.CreateRecord)
				r.Get("/pending", h.ListPending)
				r.Get("/recent", h.ListRecent)
				r.Post("/{id}/respond", h.Respond)
				r.Post("/{id}/read", h.MarkRead)
			})

			r.Get("/points", h.GetPoints)
			r.Get("/points/entries", h.ListPointEntries)

			r.Route("/reminders", func(r chi.Router) {
				r.Get("/", h.ListReminders)
				r.Post("/", h.AddReminder)
				r.Get("/due", h.DueReminders)
				r.Post("/{id}/toggle", h.ToggleReminder)
				r.Post("/{id}/complete", h.CompleteReminder)
				r.Delete("/{id}", h.DeleteReminder)
			})

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", h.ListMatches)
				r.Post("/", h.AddMatch)
				r.Get("/upcoming-reminders", h.UpcomingMatchReminders)
				r.Post("/{id}/complete", h.CompleteMatch)
				r.Post("/{id}/cheer", h.Cheer)
			})

			r.Post("/suggestions", h.CreateSuggestion)
		})
	})

	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginForm)
	r.Post("/logout", h.LogoutForm)
	r.Get("/", h.CourtPage)

	r.Group(func(r chi.Router) {
		r.Use(identity.RequireParticipant)
		r.Post("/court/serve", h.ServeForm)
		r.Post("/court/records/{id}/respond", h.RespondForm)
	})
}
