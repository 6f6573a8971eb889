package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chamanbahar/cbm-sales/internal/catalog"
)

// LineInput stages one product/unit. A quantity of zero or less removes it.
type LineInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity"`
	Unit      catalog.Unit    `json:"unit" validate:"required,oneof=Bundle Bori Packet"`
	Discount  decimal.Decimal `json:"discount"`
}

// SaveOrderRequest creates an order or saves an edit. On edit, Lines holds
// only the lines touched in the editing session.
type SaveOrderRequest struct {
	RetailerID int64           `json:"retailer_id" validate:"required,gt=0"`
	OrderDate  time.Time       `json:"order_date"`
	Discount   decimal.Decimal `json:"discount"`
	Notes      *string         `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Lines      []LineInput     `json:"lines" validate:"dive"`
}

// UpdateNotesRequest replaces an order's notes. Blank clears them.
type UpdateNotesRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateItemRequest sets a line's quantity. Zero or less removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
