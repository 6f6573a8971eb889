package retailers

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// MountStreams registers the long-lived event stream routes.
func (h *Handler) MountStreams(r chi.Router) {
	r.Get("/stream", h.Stream)
}
