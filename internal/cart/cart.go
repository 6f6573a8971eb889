// Package cart stages line-item edits for an order before they are committed
// and plans how a staged cart is applied to an order's persisted items.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/chamanbahar/cbm-sales/internal/catalog"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

// Key identifies a line within an order.
type Key struct {
	ProductID int64
	Unit      catalog.Unit
}

// Line is one staged product/unit with its quantity and discount.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Unit     catalog.Unit    `json:"unit"`
	Discount decimal.Decimal `json:"discount"`
}

// Key returns the line's (product, unit) key.
func (l Line) Key() Key {
	return Key{ProductID: l.Product.ID, Unit: l.Unit}
}

// Rate is the discounted unit price for the line.
func (l Line) Rate() decimal.Decimal {
	return l.Product.Rate(l.Discount)
}

// Subtotal is Rate × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Rate().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered set of staged lines keyed by (product, unit). Removed
// lines are remembered with zero quantity so that a later reconciliation can
// delete their persisted counterparts.
type Cart struct {
	order []Key
	lines map[Key]Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{lines: make(map[Key]Line)}
}

// Upsert stages quantity and discount for (product, unit). A quantity of
// zero or less removes the staged line.
func (c *Cart) Upsert(product catalog.Product, quantity int, unit catalog.Unit, discount decimal.Decimal) error {
	if !product.SupportsUnit(unit) {
		return shared.NewValidationError("unit", "unit "+string(unit)+" is not offered for "+product.Name)
	}
	if quantity < 0 {
		quantity = 0
	}
	line := Line{Product: product, Quantity: quantity, Unit: unit, Discount: catalog.ClampDiscount(discount)}
	key := line.Key()
	if _, ok := c.lines[key]; !ok {
		c.order = append(c.order, key)
	}
	c.lines[key] = line
	return nil
}

// Lines returns the staged lines with a positive quantity in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, key := range c.order {
		if line := c.lines[key]; line.Quantity > 0 {
			out = append(out, line)
		}
	}
	return out
}

// Touched returns every line changed in this session, including removals
// as zero-quantity lines.
func (c *Cart) Touched() []Line {
	out := make([]Line, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.lines[key])
	}
	return out
}

// Get returns the staged line for key if it has a positive quantity.
func (c *Cart) Get(key Key) (Line, bool) {
	line, ok := c.lines[key]
	if !ok || line.Quantity <= 0 {
		return Line{}, false
	}
	return line, true
}

// Total is the sum of line subtotals.
func (c *Cart) Total() decimal.Decimal {
	return TotalOf(c.Lines())
}

// Len is the number of positive lines.
func (c *Cart) Len() int {
	return len(c.Lines())
}

// IsEmpty reports whether no positive line is staged.
func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Clear discards all staged state.
func (c *Cart) Clear() {
	c.order = nil
	c.lines = make(map[Key]Line)
}

// TotalOf sums Rate × Quantity over lines.
func TotalOf(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		total = total.Add(line.Subtotal())
	}
	return total
}
