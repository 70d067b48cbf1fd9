package dashboard

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the dashboard endpoints, mounted
// under /api/{enterprise}/orgs.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{org}/dashboard", h.GetOrgData)
	return r
}
