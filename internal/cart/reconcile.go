package cart

import (
	"github.com/shopspring/decimal"

	"github.com/chamanbahar/cbm-sales/internal/catalog"
)

// Stored is the persisted snapshot of an order line.
type Stored struct {
	ID          int64
	ProductID   int64
	ProductName string
	Unit        catalog.Unit
	Quantity    int
	Discount    decimal.Decimal
	Rate        decimal.Decimal
	ImageRef    string
}

// Key returns the stored line's (product, unit) key.
func (s Stored) Key() Key {
	return Key{ProductID: s.ProductID, Unit: s.Unit}
}

// Update rewrites a persisted line in place.
type Update struct {
	ItemID int64
	Line   Line
}

// Plan lists the writes that apply a staged cart to persisted lines.
type Plan struct {
	Inserts []Line
	Updates []Update
	Deletes []int64
}

// Empty reports whether the plan has nothing to write.
func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Reconcile matches staged lines to persisted ones on (product, unit).
// Only staged lines produce writes: persisted lines the session never
// touched stay as they are. When a key is staged twice the last one wins.
func Reconcile(staged []Line, persisted []Stored) Plan {
	existing := make(map[Key]Stored, len(persisted))
	for _, s := range persisted {
		if _, dup := existing[s.Key()]; !dup {
			existing[s.Key()] = s
		}
	}

	last := make(map[Key]int, len(staged))
	for i, line := range staged {
		last[line.Key()] = i
	}

	var plan Plan
	for i, line := range staged {
		key := line.Key()
		if last[key] != i {
			continue
		}
		match, found := existing[key]
		switch {
		case line.Quantity <= 0 && found:
			plan.Deletes = append(plan.Deletes, match.ID)
		case line.Quantity <= 0:
		case found:
			if unchanged(match, line) {
				continue
			}
			plan.Updates = append(plan.Updates, Update{ItemID: match.ID, Line: line})
		default:
			plan.Inserts = append(plan.Inserts, line)
		}
	}
	return plan
}

func unchanged(s Stored, line Line) bool {
	return s.Quantity == line.Quantity &&
		s.Discount.Equal(line.Discount) &&
		s.Rate.Equal(line.Rate())
}

// Load seeds a cart with an order's persisted lines. Products that have
// left the catalog are rebuilt from the snapshot so the line keeps its rate.
func Load(stored []Stored, cat *catalog.Catalog) *Cart {
	c := New()
	for _, s := range stored {
		product, ok := cat.Get(s.ProductID)
		if !ok {
			product = placeholder(s)
		}
		key := s.Key()
		if _, seen := c.lines[key]; !seen {
			c.order = append(c.order, key)
		}
		c.lines[key] = Line{Product: product, Quantity: s.Quantity, Unit: s.Unit, Discount: catalog.ClampDiscount(s.Discount)}
	}
	return c
}

var hundred = decimal.NewFromInt(100)

// placeholder back-computes a base price from the stored rate and discount.
func placeholder(s Stored) catalog.Product {
	d := catalog.ClampDiscount(s.Discount)
	code := s.Rate
	if remaining := hundred.Sub(d); remaining.IsPositive() {
		code = s.Rate.Mul(hundred).Div(remaining).Round(4)
	}
	return catalog.Product{
		ID:       s.ProductID,
		Name:     s.ProductName,
		ImageRef: s.ImageRef,
		Code:     code,
		Bundle:   decimal.NewFromInt(1),
		Bori:     decimal.NewFromInt(1),
	}
}
