package refresh

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the refresh endpoints, mounted under
// /api/{enterprise}/refresh.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Force)
	r.Post("/auto", h.Auto)
	return r
}
