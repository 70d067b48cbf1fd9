package reports

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the report endpoints, mounted under
// /api/{enterprise}/reports.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/systemwide", h.GetSystemwide)
	r.Get("/organizations", h.GetOrganizations)
	r.Get("/groups", h.GetGroups)
	return r
}
