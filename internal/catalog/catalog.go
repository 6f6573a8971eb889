// Package catalog holds the fixed list of sellable products and their
// pricing formulas.
package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Catalog is an immutable, indexed product list.
type Catalog struct {
	products []Product
	byID     map[int64]int
}

// Variant groups products sharing a variant key.
type Variant struct {
	Key      string    `json:"key"`
	Products []Product `json:"products"`
}

// New builds a catalog. Product ids must be unique.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %d (%s)", p.ID, p.Name)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get looks up a product by id.
func (c *Catalog) Get(id int64) (Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

// Search returns products whose name contains query, ignoring case. A blank
// query matches everything.
func (c *Catalog) Search(query string) []Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.All()
	}
	// Casers are stateful; one per call keeps Search safe for concurrent use.
	fold := cases.Fold()
	needle := fold.String(query)
	var out []Product
	for _, p := range c.products {
		if strings.Contains(fold.String(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Filter narrows products to a category; an empty category is a no-op.
func Filter(products []Product, category string) []Product {
	if category == "" {
		return products
	}
	var out []Product
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Variants groups products by VariantKey in first-seen order.
func (c *Catalog) Variants() []Variant {
	var out []Variant
	index := map[string]int{}
	for _, p := range c.products {
		i, ok := index[p.VariantKey]
		if !ok {
			i = len(out)
			index[p.VariantKey] = i
			out = append(out, Variant{Key: p.VariantKey})
		}
		out[i].Products = append(out[i].Products, p)
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
