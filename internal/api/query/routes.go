package query

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers query routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/query", func(r chi.Router) {
		r.Post("/", h.Query)
	})
}
