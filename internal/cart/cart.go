// Package cart keeps the items a cashier is about to sell. Quantities are capped
// by the stock figure captured when the item was added; the backend stays the
// source of truth and re-checks stock when the sale is recorded.
package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrCheckoutInProgress   = errors.New("a checkout for this cart is already in progress")
)

// Line is one item in the cart
type Line struct {
	Item     model.Item `json:"item"`
	Quantity int        `json:"quantity"`
}

// Total is price times quantity for the line
func (l Line) Total() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Customer is the optional buyer information recorded with a sale
type Customer struct {
	Name  string `json:"customer_name"`
	Phone string `json:"customer_phone"`
	Notes string `json:"notes"`
}

// Submitter records a sale with the backend
type Submitter interface {
	Create(ctx context.Context, sale model.NewSale) client.Result[model.Sale]
}

// Cart is safe for concurrent use; a tab may fire overlapping requests
type Cart struct {
	mu    sync.Mutex
	lines []Line

	// version counts edits so Checkout can tell whether the cart moved while
	// the sale was being recorded
	version     uint64
	checkingOut bool
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

func (c *Cart) find(itemID int64) int {
	for i, l := range c.lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}

// Add puts one unit of item in the cart. Out-of-stock items are ignored and an
// existing line never grows past its stock snapshot. It reports whether the cart changed.
func (c *Cart) Add(item model.Item) bool {
	if item.StockQuantity <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.find(item.ID); i >= 0 {
		if c.lines[i].Quantity >= c.lines[i].Item.StockQuantity {
			return false
		}
		c.lines[i].Quantity++
		c.version++
		return true
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
	c.version++
	return true
}

// SetQuantity removes the line when n <= 0, otherwise clamps n to the stock snapshot
func (c *Cart) SetQuantity(itemID int64, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(itemID)
	if i < 0 {
		return
	}
	c.version++
	if n <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
	c.lines[i].Quantity = min(n, c.lines[i].Item.StockQuantity)
}

// Remove drops the line for itemID, if any
func (c *Cart) Remove(itemID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.find(itemID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		c.version++
	}
}

// Total is recomputed from the lines on every call
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return total(c.lines)
}

func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Lines returns a copy of the current lines
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Count is the number of units across all lines
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.version++
}

// Checkout submits the cart as a sale. The lock is not held during the backend
// call, so reads stay responsive; only one checkout per cart runs at a time.
// On failure the cart is left exactly as it was. On success the sold lines are
// cleared, and edits made while the sale was in flight are kept.
func (c *Cart) Checkout(ctx context.Context, sales Submitter, paymentMethod string, customer Customer) (model.Sale, error) {
	if !model.ValidPaymentMethod(paymentMethod) {
		return model.Sale{}, ErrInvalidPaymentMethod
	}

	c.mu.Lock()
	if c.checkingOut {
		c.mu.Unlock()
		return model.Sale{}, ErrCheckoutInProgress
	}
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return model.Sale{}, ErrEmptyCart
	}
	sold := make([]Line, len(c.lines))
	copy(sold, c.lines)
	version := c.version
	c.checkingOut = true
	c.mu.Unlock()

	req := model.NewSale{
		Items:         make([]model.SaleLine, 0, len(sold)),
		PaymentMethod: paymentMethod,
		CustomerName:  strings.TrimSpace(customer.Name),
		CustomerPhone: strings.TrimSpace(customer.Phone),
		Notes:         customer.Notes,
	}
	if req.CustomerName == "" {
		req.CustomerName = model.DefaultCustomerName
	}
	for _, l := range sold {
		req.Items = append(req.Items, model.SaleLine{ItemID: l.Item.ID, Quantity: l.Quantity, Price: l.Item.Price})
	}

	sale, err := sales.Create(ctx, req).Unwrap()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkingOut = false
	if err != nil {
		return model.Sale{}, err
	}
	if sale.TotalAmount.IsZero() {
		sale.TotalAmount = total(sold)
	}
	if c.version == version {
		c.lines = nil
	} else {
		c.deduct(sold)
	}
	c.version++
	return sale, nil
}

// deduct takes sold quantities off the current lines, dropping lines that run out
func (c *Cart) deduct(sold []Line) {
	kept := c.lines[:0]
	for _, l := range c.lines {
		for _, s := range sold {
			if s.Item.ID == l.Item.ID {
				l.Quantity -= s.Quantity
				break
			}
		}
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}
