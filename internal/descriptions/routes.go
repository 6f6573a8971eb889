package descriptions

import "github.com/go-chi/chi/v5"

// MountRoutes attaches under the catalog prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products/{id}/description", h.Show)
}
