package location

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the stored locations router
func (h *Handler) Routes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(identity)

	r.Get("/", h.List)
	r.Post("/", h.Resolve)
	r.Get("/{id}", h.GetByID)

	return r
}

// PlaceRoutes returns the place search router
func (h *Handler) PlaceRoutes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(identity)

	r.Get("/search", h.Search)

	return r
}
