// Package orders persists sales orders and enforces their lifecycle.
package orders

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/chamanbahar/cbm-sales/internal/cart"
	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/retailers"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus accepts a status in any letter case.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsCompleted() bool { return s == StatusCompleted }
func (s Status) IsCancelled() bool { return s == StatusCancelled }

// Editable reports whether items, notes and header fields may change.
func (s Status) Editable() bool { return s == StatusPending }

// Label is the display name.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Order is the order header.
type Order struct {
	ID          int64           `json:"id"`
	RetailerID  int64           `json:"retailer_id"`
	OrderDate   time.Time       `json:"order_date"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       *string         `json:"notes,omitempty"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MarshalJSON adds the derived status flags.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		StatusLabel string `json:"status_label"`
		IsCompleted bool   `json:"is_completed"`
		IsCancelled bool   `json:"is_cancelled"`
	}{
		plain:       plain(o),
		StatusLabel: o.Status.Label(),
		IsCompleted: o.Status.IsCompleted(),
		IsCancelled: o.Status.IsCancelled(),
	})
}

// Item is an order line. Product name, rate and image are snapshots taken
// when the line was written.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Rate        decimal.Decimal `json:"rate"`
	Quantity    int             `json:"quantity"`
	Unit        catalog.Unit    `json:"unit"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ImageRef    string          `json:"image_ref"`
}

// Detail is an order joined with its retailer and items.
type Detail struct {
	Order    Order              `json:"order"`
	Retailer retailers.Retailer `json:"retailer"`
	Items    []Item             `json:"items"`
}

// Summary breaks an order's value down for display. GrossSubtotal prices
// every line before its own discount; DiscountAmount is what those line
// discounts took off.
type Summary struct {
	GrossSubtotal  decimal.Decimal `json:"gross_subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Summary derives the gross subtotal from the stored rates. A line
// discounted by 100% or more has no recoverable list price and counts as
// zero.
func (d Detail) Summary() Summary {
	gross, discount := decimal.Zero, decimal.Zero
	for _, it := range d.Items {
		if it.Discount.GreaterThanOrEqual(hundred) {
			continue
		}
		listRate := it.Rate.Mul(hundred).Div(hundred.Sub(it.Discount))
		lineGross := listRate.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		gross = gross.Add(lineGross)
		discount = discount.Add(lineGross.Sub(it.Subtotal))
	}
	return Summary{GrossSubtotal: gross, DiscountAmount: discount, Total: d.Order.TotalAmount}
}

// MarshalJSON adds the derived summary.
func (d Detail) MarshalJSON() ([]byte, error) {
	type plain Detail
	return json.Marshal(struct {
		plain
		Summary Summary `json:"summary"`
	}{plain: plain(d), Summary: d.Summary()})
}

// Matches reports whether query appears in the order number or, ignoring
// case, in the retailer name. A leading '#' is dropped so "#12" finds order
// 12. A blank query matches every order.
func (d Detail) Matches(query string) bool {
	query = strings.TrimPrefix(strings.TrimSpace(query), "#")
	if query == "" {
		return true
	}
	if strings.Contains(strconv.FormatInt(d.Order.ID, 10), query) {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(d.Retailer.Name), fold.String(query))
}

// Search keeps the orders that match query, preserving their order.
func Search(list []Detail, query string) []Detail {
	if strings.TrimSpace(query) == "" {
		return list
	}
	out := []Detail{}
	for _, d := range list {
		if d.Matches(query) {
			out = append(out, d)
		}
	}
	return out
}

var hundred = decimal.NewFromInt(100)

// ComputeTotal is Σ subtotal less the order-level discount percentage.
func ComputeTotal(items []Item, discount decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal)
	}
	d := catalog.ClampDiscount(discount)
	return sum.Sub(sum.Mul(d).Div(hundred))
}

func itemFromLine(orderID int64, line cart.Line) Item {
	return Item{
		OrderID:     orderID,
		ProductID:   line.Product.ID,
		ProductName: line.Product.Name,
		Rate:        line.Rate(),
		Quantity:    line.Quantity,
		Unit:        line.Unit,
		Discount:    line.Discount,
		Subtotal:    line.Subtotal(),
		ImageRef:    line.Product.ImageRef,
	}
}

func (it Item) stored() cart.Stored {
	return cart.Stored{
		ID:          it.ID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Unit:        it.Unit,
		Quantity:    it.Quantity,
		Discount:    it.Discount,
		Rate:        it.Rate,
		ImageRef:    it.ImageRef,
	}
}

// Stored converts items to cart snapshots.
func Stored(items []Item) []cart.Stored {
	out := make([]cart.Stored, 0, len(items))
	for _, it := range items {
		out = append(out, it.stored())
	}
	return out
}
