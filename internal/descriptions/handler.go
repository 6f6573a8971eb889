package descriptions

import (
	"log/slog"
	"net/http"

	"github.com/chamanbahar/cbm-sales/internal/platform/httpx"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Handler serves cached description pages.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("id", "is invalid"))
		return
	}
	html, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
