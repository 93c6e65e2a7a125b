// Package cart holds the POS cart: an ordered set of line items bound to a
// single store, with totals derived on demand from the lines and the tax rate.
//
// A Cart is owned by one POS session and is not safe for concurrent use.
// It performs no I/O; callers persist it through a Store after a batch of
// mutations.
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSnapshot is the subset of a product the cart needs for display and pricing.
type ProductSnapshot struct {
	ID       string          `json:"id"`
	StoreID  string          `json:"storeId"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku,omitempty"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// Line is one product's quantity and subtotal. Subtotal is always Price × Quantity.
type Line struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func newLine(p ProductSnapshot, quantity int) Line {
	return Line{
		Product:  p,
		Quantity: quantity,
		Subtotal: p.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

type Cart struct {
	lines        []Line
	storeID      string
	taxRate      decimal.Decimal
	pending      bool
	lastModified time.Time
	now          func() time.Time
}

type Option func(*Cart)

// WithClock overrides the clock used for the modification timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Cart) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns an empty, unbound cart with a zero tax rate.
func New(opts ...Option) *Cart {
	c := &Cart{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.lastModified = c.now().UTC()
	return c
}

func (c *Cart) touch() {
	c.lastModified = c.now().UTC()
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// SetBoundStore binds the cart to storeID. Rebinding to a different store
// discards every line first.
func (c *Cart) SetBoundStore(storeID string) Outcome {
	if storeID == c.storeID {
		return Unchanged
	}
	out := Updated
	if c.storeID != "" && len(c.lines) > 0 {
		c.lines = nil
		out = Cleared
	}
	c.storeID = storeID
	c.touch()
	return out
}

// SetTaxRate replaces the fractional tax rate (0.08 for 8%). Negative rates
// are treated as zero; the upper bound is enforced by store settings.
func (c *Cart) SetTaxRate(rate decimal.Decimal) Outcome {
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	if rate.Equal(c.taxRate) {
		return Unchanged
	}
	c.taxRate = rate
	c.touch()
	return Updated
}

// AddLine adds quantity units of p. A quantity below one adds a single unit.
// Products without a store, or from another store while the cart is bound,
// are rejected. An unbound cart is therefore always empty.
func (c *Cart) AddLine(p ProductSnapshot, quantity int) Outcome {
	if quantity < 1 {
		quantity = 1
	}
	if p.StoreID == "" {
		return RejectedWrongStore
	}
	if c.storeID != "" && p.StoreID != c.storeID {
		return RejectedWrongStore
	}

	if i := c.indexOf(p.ID); i >= 0 {
		// The incoming snapshot replaces the stored one so the subtotal and
		// the displayed unit price never disagree.
		c.lines[i] = newLine(p, c.lines[i].Quantity+quantity)
		c.touch()
		return Updated
	}

	c.lines = append(c.lines, newLine(p, quantity))
	if c.storeID == "" {
		c.storeID = p.StoreID
	}
	c.touch()
	return Added
}

// SetLineQuantity replaces the quantity of a line. A quantity of zero or less
// removes the line.
func (c *Cart) SetLineQuantity(productID string, quantity int) Outcome {
	if quantity <= 0 {
		return c.RemoveLine(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return NotFound
	}
	if c.lines[i].Quantity == quantity {
		return Unchanged
	}
	c.lines[i] = newLine(c.lines[i].Product, quantity)
	c.touch()
	return Updated
}

func (c *Cart) RemoveLine(productID string) Outcome {
	i := c.indexOf(productID)
	if i < 0 {
		return NotFound
	}
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
	c.touch()
	return Removed
}

// Clear empties the cart but keeps the store binding and tax rate.
func (c *Cart) Clear() Outcome {
	if len(c.lines) == 0 {
		return Unchanged
	}
	c.lines = nil
	c.touch()
	return Cleared
}

// MarkPending flags the cart as awaiting sync with the backend.
func (c *Cart) MarkPending() {
	if !c.pending {
		c.pending = true
		c.touch()
	}
}

func (c *Cart) Pending() bool            { return c.pending }
func (c *Cart) BoundStore() string       { return c.storeID }
func (c *Cart) TaxRate() decimal.Decimal { return c.taxRate }
func (c *Cart) LastModified() time.Time  { return c.lastModified }
func (c *Cart) Empty() bool              { return len(c.lines) == 0 }

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line for productID, if present.
func (c *Cart) Line(productID string) (Line, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return Line{}, false
	}
	return c.lines[i], true
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum
}

func (c *Cart) TaxAmount() decimal.Decimal {
	return c.Subtotal().Mul(c.taxRate)
}

func (c *Cart) Total() decimal.Decimal {
	subtotal := c.Subtotal()
	return subtotal.Add(subtotal.Mul(c.taxRate))
}
