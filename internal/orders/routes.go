package orders

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Save)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/cart", h.Cart)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/pending", h.Reopen)
	r.Post("/{id}/cancel", h.Cancel)
	r.Put("/{id}/notes", h.UpdateNotes)
	r.Put("/{id}/items/{itemID}", h.UpdateItem)
	r.Delete("/{id}/items/{itemID}", h.RemoveItem)
}

// MountStreams registers the long-lived event stream routes.
func (h *Handler) MountStreams(r chi.Router) {
	r.Get("/stream", h.Stream)
	r.Get("/{id}/stream", h.StreamOne)
}
