package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one cart entry: a product snapshot plus a quantity.
type CartLine struct {
	ProductID      uuid.UUID
	ProductName    string
	ProductBarcode string
	Price          decimal.Decimal
	BuyPrice       decimal.Decimal
	Quantity       int
}

// Cart is the ephemeral checkout collection. It is never persisted. Lines are
// unique by product id and keep their insertion order.
type Cart struct {
	lines []CartLine
	index map[uuid.UUID]int
}

func NewCart() *Cart {
	return &Cart{index: make(map[uuid.UUID]int)}
}

// Add puts a line in the cart. Adding a product already present increments
// its quantity instead of duplicating the line.
func (c *Cart) Add(line CartLine) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if i, ok := c.index[line.ProductID]; ok {
		c.lines[i].Quantity += line.Quantity
		return
	}
	c.index[line.ProductID] = len(c.lines)
	c.lines = append(c.lines, line)
}

// Increment raises the quantity of an existing line by one.
func (c *Cart) Increment(productID uuid.UUID) {
	if i, ok := c.index[productID]; ok {
		c.lines[i].Quantity++
	}
}

// Decrement lowers the quantity of an existing line by one, clamped at 1:
// decrementing a line at quantity 1 is a no-op. Removal is a separate,
// explicit action.
func (c *Cart) Decrement(productID uuid.UUID) {
	if i, ok := c.index[productID]; ok && c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
	}
}

// Remove deletes a line outright, regardless of its quantity.
func (c *Cart) Remove(productID uuid.UUID) {
	i, ok := c.index[productID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
}

// Lines returns the cart content in insertion order.
func (c *Cart) Lines() []CartLine { return c.lines }

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Subtotal is the sum of price × quantity across all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
