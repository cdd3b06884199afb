package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the job protocol under /backend
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/backend/jobs", func(r chi.Router) {
		r.Post("/", h.HandleSubmit)
		r.Get("/{id}", h.HandleGet)
	})
}
