package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods
const (
	PaymentCash        = "cash"
	PaymentCard        = "card"
	PaymentMobileMoney = "mobile_money"
)

// DefaultCustomerName is recorded when a sale is made without customer details
const DefaultCustomerName = "Walk-in Customer"

// ValidPaymentMethod reports whether m is accepted at checkout
func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentMobileMoney
}

// SaleLine is one item row of a recorded sale
type SaleLine struct {
	ItemID   int64           `json:"item_id"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// LineTotal is price times quantity
func (l SaleLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale is immutable once created by the backend
type Sale struct {
	ID            int64            `json:"id"`
	Items         []SaleLine       `json:"items"`
	PaymentMethod string           `json:"payment_method"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	StaffName     string           `json:"staff_name,omitempty"`
	Subtotal      *decimal.Decimal `json:"subtotal,omitempty"`
	Tax           *decimal.Decimal `json:"tax,omitempty"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ItemsSold sums the quantities of all lines
func (s Sale) ItemsSold() int {
	n := 0
	for _, l := range s.Items {
		n += l.Quantity
	}
	return n
}

// NewSale is the payload submitted to the sale-creation endpoint
type NewSale struct {
	Items         []SaleLine `json:"items"`
	PaymentMethod string     `json:"payment_method"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	Notes         string     `json:"notes,omitempty"`
}
