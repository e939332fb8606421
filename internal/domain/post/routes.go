package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns posts router
func (h *Handler) Routes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(identity)

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetByID)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/like", h.ToggleLike)
		r.Get("/location", h.Location)
		r.Get("/file", h.DownloadFile)
	})

	return r
}

// CategoryRoutes returns the categories router
func (h *Handler) CategoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCategories)
	return r
}
