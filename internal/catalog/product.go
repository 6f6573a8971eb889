package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit is a sellable packaging unit.
type Unit string

const (
	UnitBundle Unit = "Bundle"
	UnitBori   Unit = "Bori"
	UnitPacket Unit = "Packet"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Product is an immutable catalog entry. Code is the base price of one
// bundle; MRP is the printed price of one packet.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageRef    string          `json:"image_ref"`
	Code        decimal.Decimal `json:"code"`
	MRP         decimal.Decimal `json:"mrp"`
	Weight      decimal.Decimal `json:"weight"`
	Bundle      decimal.Decimal `json:"bundle"`
	Bori        decimal.Decimal `json:"bori"`
	Scheme      string          `json:"scheme"`
	VariantKey  string          `json:"variant_key"`
	Category    string          `json:"category"`
	WebsiteURL  string          `json:"website_url,omitempty"`
}

// ClampDiscount bounds a discount percentage to [0,100].
func ClampDiscount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// BundleWeight is the weight of one bundle in grams.
func (p Product) BundleWeight() decimal.Decimal {
	return p.Weight.Mul(p.Bundle)
}

// LotWeight is the weight of one bori in grams.
func (p Product) LotWeight() decimal.Decimal {
	return p.BundleWeight().Mul(p.Bori)
}

// Rate is the discounted bundle price: code × (1 − discount/100).
func (p Product) Rate(discount decimal.Decimal) decimal.Decimal {
	d := ClampDiscount(discount)
	return p.Code.Sub(p.Code.Mul(d).Div(hundred))
}

// EachPacket is the discounted price of a single packet.
func (p Product) EachPacket(discount decimal.Decimal) decimal.Decimal {
	if p.Bundle.IsZero() {
		return decimal.Zero
	}
	return p.Rate(discount).Div(p.Bundle)
}

// ProfitPerPacket is the retailer margin on one packet sold at MRP.
func (p Product) ProfitPerPacket(discount decimal.Decimal) decimal.Decimal {
	return p.MRP.Sub(p.EachPacket(discount))
}

// ProfitPerBundle is the retailer margin on one bundle sold at MRP.
func (p Product) ProfitPerBundle(discount decimal.Decimal) decimal.Decimal {
	return p.MRP.Mul(p.Bundle).Sub(p.Rate(discount))
}

// Units lists the units this product can be ordered in. Bundle is always
// offered.
func (p Product) Units() []Unit {
	units := []Unit{UnitBundle}
	if p.Bori.IsPositive() {
		units = append(units, UnitBori)
	}
	if p.Bundle.IsPositive() {
		units = append(units, UnitPacket)
	}
	return units
}

// SupportsUnit reports whether u is one of Units().
func (p Product) SupportsUnit(u Unit) bool {
	for _, candidate := range p.Units() {
		if candidate == u {
			return true
		}
	}
	return false
}

// FormatWeight renders grams as "800 g" or "1.20 kg".
func FormatWeight(grams decimal.Decimal) string {
	if grams.GreaterThanOrEqual(thousand) {
		return fmt.Sprintf("%s kg", grams.Div(thousand).StringFixed(2))
	}
	return fmt.Sprintf("%s g", grams.StringFixed(0))
}

// Pricing is the computed price sheet for a product at a given discount.
type Pricing struct {
	Discount        decimal.Decimal `json:"discount"`
	Rate            decimal.Decimal `json:"rate"`
	EachPacket      decimal.Decimal `json:"each_packet"`
	ProfitPerPacket decimal.Decimal `json:"profit_per_packet"`
	ProfitPerBundle decimal.Decimal `json:"profit_per_bundle"`
	BundleWeight    string          `json:"bundle_weight"`
	LotWeight       string          `json:"lot_weight"`
	Units           []Unit          `json:"units"`
}

// PriceAt computes the price sheet for discount.
func (p Product) PriceAt(discount decimal.Decimal) Pricing {
	d := ClampDiscount(discount)
	return Pricing{
		Discount:        d,
		Rate:            p.Rate(d),
		EachPacket:      p.EachPacket(d).Round(2),
		ProfitPerPacket: p.ProfitPerPacket(d).Round(2),
		ProfitPerBundle: p.ProfitPerBundle(d).Round(2),
		BundleWeight:    FormatWeight(p.BundleWeight()),
		LotWeight:       FormatWeight(p.LotWeight()),
		Units:           p.Units(),
	}
}
