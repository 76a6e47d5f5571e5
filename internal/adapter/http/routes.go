package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/lexforge/lexforge/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.MatterID).Post("/query", h.HandleQuery)
		r.Get("/matters/{id}/audit", h.ListMatterAudit)
	})
}
