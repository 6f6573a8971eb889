package catalog

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/chamanbahar/cbm-sales/internal/platform/httpx"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Handler serves read-only catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	catalog *Catalog
}

// NewHandler constructs a catalog handler.
func NewHandler(logger *slog.Logger, catalog *Catalog) *Handler {
	return &Handler{logger: logger, catalog: catalog}
}

type productView struct {
	Product
	Pricing Pricing `json:"pricing"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := Filter(h.catalog.Search(q.Get("q")), q.Get("category"))
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   products,
		"categories": h.catalog.Categories(),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.RespondError(w, shared.NewValidationError("id", "is invalid"))
		return
	}
	p, found := h.catalog.Get(id)
	if !found {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	discount := decimal.Zero
	if raw := r.URL.Query().Get("discount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			httpx.RespondError(w, shared.NewValidationError("discount", "is invalid"))
			return
		}
		discount = d
	}
	httpx.JSON(w, http.StatusOK, productView{Product: p, Pricing: p.PriceAt(discount)})
}

func (h *Handler) Variants(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.catalog.Variants())
}
