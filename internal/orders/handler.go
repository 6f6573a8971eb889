package orders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chamanbahar/cbm-sales/internal/live"
	"github.com/chamanbahar/cbm-sales/internal/platform/httpx"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Handler exposes order endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs an order handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.listFilter(w, r)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, "list orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Get(r.Context(), id)
	h.respond(w, "get order", http.StatusOK, d, err)
}

// Create saves a new order. The save runs to completion even if the client
// goes away mid-request.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SaveOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "is not valid JSON"))
		return
	}
	d, err := h.service.Create(context.WithoutCancel(r.Context()), req)
	h.respond(w, "create order", http.StatusCreated, d, err)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req SaveOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "is not valid JSON"))
		return
	}
	d, err := h.service.SaveEdit(context.WithoutCancel(r.Context()), id, req)
	h.respond(w, "save order", http.StatusOK, d, err)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	d, err := h.service.MarkCompleted(r.Context(), id)
	h.respond(w, "complete order", http.StatusOK, d, err)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	d, err := h.service.MarkPending(r.Context(), id)
	h.respond(w, "reopen order", http.StatusOK, d, err)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	d, err := h.service.Cancel(r.Context(), id)
	h.respond(w, "cancel order", http.StatusOK, d, err)
}

func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var req UpdateNotesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "is not valid JSON"))
		return
	}
	d, err := h.service.UpdateNotes(r.Context(), id, req)
	h.respond(w, "update order notes", http.StatusOK, d, err)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	itemID, ok := httpx.IDParam(r, "itemID")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("item_id", "is invalid"))
		return
	}
	var req UpdateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.NewValidationError("body", "is not valid JSON"))
		return
	}
	d, err := h.service.UpdateItemQuantity(r.Context(), id, itemID, req.Quantity)
	h.respond(w, "update order item", http.StatusOK, d, err)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	itemID, ok := httpx.IDParam(r, "itemID")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("item_id", "is invalid"))
		return
	}
	d, err := h.service.RemoveItem(r.Context(), id, itemID)
	h.respond(w, "remove order item", http.StatusOK, d, err)
}

func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.fail(w, "load order cart", err)
		return
	}
	c, err := h.service.LoadCart(r.Context(), id)
	if err != nil {
		h.fail(w, "load order cart", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"lines": c.Lines(),
		"total": c.Total(),
	})
}

func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.listFilter(w, r)
	if !ok {
		return
	}
	live.ServeSSE(w, r, h.service.Watch(r.Context(), filter), h.logger)
}

func (h *Handler) StreamOne(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	live.ServeSSE(w, r, h.service.WatchDetail(r.Context(), id), h.logger)
}

// listFilter reads the optional status and q query parameters.
func (h *Handler) listFilter(w http.ResponseWriter, r *http.Request) (Filter, bool) {
	filter := Filter{Query: r.URL.Query().Get("q")}
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return filter, true
	}
	status, err := ParseStatus(raw)
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("status", "must be one of pending completed cancelled"))
		return filter, false
	}
	filter.Status = &status
	return filter, true
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("id", "is invalid"))
	}
	return id, ok
}

func (h *Handler) respond(w http.ResponseWriter, op string, status int, d *Detail, err error) {
	if err != nil {
		h.fail(w, op, err)
		return
	}
	httpx.JSON(w, status, d)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if shared.IsServerError(err) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
