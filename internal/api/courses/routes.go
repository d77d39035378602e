package courses

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers course statistics routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/courses", func(r chi.Router) {
		r.Get("/", h.GetCourseStats)
	})
}
