// Package receipt lays out sale receipts as HTML and prints them to PDF.
package receipt

import (
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultCurrency labels every amount on the receipt
const DefaultCurrency = "GHS"

const (
	maxNameLength = 25
	truncatedName = 22
)

// Line is one printed row of the items table
type Line struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

// Receipt is the fully formatted view of one sale
type Receipt struct {
	StoreName     string
	Logo          template.URL
	Address       string
	Phone         string
	Email         string
	Website       string
	TaxNumber     string
	Number        int64
	Date          string
	Time          string
	Staff         string
	Lines         []Line
	Subtotal      string
	Tax           string
	Discount      string
	Total         string
	PaymentMethod string
	Footer        string
}

// TruncateName shortens long item names to fit the Item column
func TruncateName(name string) string {
	if name == "" {
		return "Unknown Item"
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		r := []rune(name)
		return string(r[:truncatedName]) + "..."
	}
	return name
}

// PaymentLabel turns a payment method code into its printed form
func PaymentLabel(method string) string {
	switch method {
	case model.PaymentCash, "":
		return "Cash"
	case model.PaymentCard:
		return "Card"
	case model.PaymentMobileMoney:
		return "Mobile Money"
	default:
		return method
	}
}

type formatter struct {
	currency string
}

func (f formatter) money(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", f.currency, d.StringFixed(2))
}

// Build formats a sale for printing. Only data:image/ logos are embedded.
func Build(sale model.Sale, store model.StoreDetails, currency string) Receipt {
	if currency == "" {
		currency = DefaultCurrency
	}
	f := formatter{currency: currency}

	r := Receipt{
		StoreName:     store.StoreName(),
		Address:       store.Address,
		Phone:         store.Contact,
		Email:         store.Email,
		Website:       store.Website,
		TaxNumber:     store.TaxNumber,
		Number:        sale.ID,
		Date:          sale.CreatedAt.Format("2006-01-02"),
		Time:          sale.CreatedAt.Format("15:04:05"),
		Staff:         sale.StaffName,
		PaymentMethod: PaymentLabel(sale.PaymentMethod),
		Footer:        store.ReceiptFooter,
	}
	if r.Staff == "" {
		r.Staff = "Unknown"
	}
	if strings.HasPrefix(store.Logo, "data:image/") {
		r.Logo = template.URL(store.Logo)
	}

	sum := decimal.Zero
	for _, l := range sale.Items {
		sum = sum.Add(l.LineTotal())
		r.Lines = append(r.Lines, Line{
			Name:     TruncateName(l.Name),
			Quantity: l.Quantity,
			Price:    f.money(l.Price),
			Total:    f.money(l.LineTotal()),
		})
	}

	total := sale.TotalAmount
	if total.IsZero() {
		total = sum
	}
	r.Total = f.money(total)

	if sale.Subtotal != nil {
		r.Subtotal = f.money(*sale.Subtotal)
	} else {
		r.Subtotal = r.Total
	}
	if sale.Tax != nil && !sale.Tax.IsZero() {
		r.Tax = f.money(*sale.Tax)
	}
	if sale.Discount != nil && !sale.Discount.IsZero() {
		r.Discount = "-" + f.money(*sale.Discount)
	}
	return r
}

// FileName is the download name of a sale's receipt
func FileName(saleID int64) string {
	return fmt.Sprintf("receipt-%d.pdf", saleID)
}
