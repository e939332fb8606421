package friend

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the friends router
func (h *Handler) Routes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(identity)

	r.Get("/", h.ListFriends)
	r.Delete("/{id}", h.RemoveFriend)

	return r
}

// RequestRoutes returns the friend requests router. It is mounted apart from
// the friends router so every user id stays addressable under /friends/{id}.
func (h *Handler) RequestRoutes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(identity)

	r.Post("/", h.SendRequest)
	r.Get("/incoming", h.ListIncoming)
	r.Get("/outgoing", h.ListOutgoing)
	r.Post("/{id}/accept", h.AcceptRequest)

	return r
}

// BlockRoutes returns the blocks router
func (h *Handler) BlockRoutes(identity func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(identity)

	r.Get("/", h.ListBlocked)
	r.Post("/{id}", h.BlockUser)
	r.Delete("/{id}", h.UnblockUser)

	return r
}
