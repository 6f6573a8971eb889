package retailers

import (
	"log/slog"
	"net/http"

	"github.com/chamanbahar/cbm-sales/internal/live"
	"github.com/chamanbahar/cbm-sales/internal/platform/httpx"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Handler exposes retailer endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a retailer handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list retailers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("id", "is invalid"))
		return
	}
	rt, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get retailer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rt)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRetailerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "is not valid JSON"))
		return
	}
	rt, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create retailer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rt)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("id", "is invalid"))
		return
	}
	var req UpdateRetailerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "is not valid JSON"))
		return
	}
	rt, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update retailer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rt)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("id", "is invalid"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete retailer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	live.ServeSSE(w, r, h.service.Watch(r.Context()), h.logger)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if shared.IsServerError(err) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
