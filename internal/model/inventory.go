package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is the stock level at or below which an item counts as low stock
const DefaultLowStockThreshold = 10

// Item is an inventory entry owned by the backend; the gateway only holds per-request copies
type Item struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	ImageURL      string          `json:"image_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ItemInput is the create and update payload for an item
type ItemInput struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
}

// ItemPatch carries only the fields a bulk update changes
type ItemPatch struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name,omitempty"`
	Category    string           `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p ItemPatch) Empty() bool {
	return p.Name == "" && p.Category == "" && p.Description == nil && p.Price == nil && p.Stock == nil
}

// IsLowStock reports whether the item is at or below threshold
func (i Item) IsLowStock(threshold int) bool {
	return i.StockQuantity <= threshold
}

// StockValue is price times quantity on hand
func (i Item) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.StockQuantity)))
}

// Stock status labels shown next to items
const (
	StockStatusOut = "Out of Stock"
	StockStatusLow = "Low Stock"
	StockStatusIn  = "In Stock"
)

// StockStatus labels a stock level
func StockStatus(stock, threshold int) string {
	switch {
	case stock == 0:
		return StockStatusOut
	case stock <= threshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// Stock operations accepted by the backend's stock endpoint
const (
	StockOpAdd      = "add"
	StockOpSubtract = "subtract"
	StockOpSet      = "set"
)

// Category colors are style tags the browser maps to badge colors
var CategoryColors = map[string]string{
	"Blue":   "bg-blue-100 text-blue-800",
	"Green":  "bg-green-100 text-green-800",
	"Purple": "bg-purple-100 text-purple-800",
	"Orange": "bg-orange-100 text-orange-800",
	"Red":    "bg-red-100 text-red-800",
	"Yellow": "bg-yellow-100 text-yellow-800",
	"Gray":   "bg-gray-100 text-gray-800",
	"Pink":   "bg-pink-100 text-pink-800",
}

// DefaultCategoryColor is used when a category is created without a color
const DefaultCategoryColor = "bg-blue-100 text-blue-800"

// Category groups items
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ValidCategoryColor reports whether color is one of the known style tags
func ValidCategoryColor(color string) bool {
	for _, v := range CategoryColors {
		if v == color {
			return true
		}
	}
	return false
}
