// Package cart keeps each browsing session's cart behind an injected storage
// backend. Product snapshots are stored with the line so prices stay as seen.
package cart

import (
	"github.com/angelmondragon/wholesale-storefront/internal/catalog"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

// MaxLineQuantity caps a single line, matching the quantity stepper.
const MaxLineQuantity = 10000

// Line is one cart entry. Product.ID is its identity.
type Line struct {
	Product   catalog.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	PriceMode enums.PriceMode `json:"priceMode"`
}

// Cart is an ordered set of lines. Mutators keep insertion order.
type Cart struct {
	Lines []Line
}

func (c *Cart) indexOf(productID int) int {
	for i, line := range c.Lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add accumulates quantity onto an existing line and overwrites its mode,
// or appends a new line.
func (c *Cart) Add(product catalog.Product, qty int, mode enums.PriceMode) Line {
	if i := c.indexOf(product.ID); i >= 0 {
		c.Lines[i].Quantity += qty
		c.Lines[i].PriceMode = mode
		return c.Lines[i]
	}
	line := Line{Product: product, Quantity: qty, PriceMode: mode}
	c.Lines = append(c.Lines, line)
	return line
}

// Remove drops the line for productID and reports whether one existed.
func (c *Cart) Remove(productID int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// UpdateQuantity sets a line's quantity; qty <= 0 removes the line.
func (c *Cart) UpdateQuantity(productID, qty int) bool {
	if qty <= 0 {
		return c.Remove(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Lines[i].Quantity = qty
	return true
}

func (c *Cart) UpdatePriceMode(productID int, mode enums.PriceMode) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Lines[i].PriceMode = mode
	return true
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// TotalItems sums quantities, not lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Line returns the line for productID.
func (c *Cart) Line(productID int) (Line, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}
