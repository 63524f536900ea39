package model

import (
	"github.com/shopspring/decimal"
)

// DashboardStats aggregates sales and inventory figures for the dashboard page
type DashboardStats struct {
	TotalItems    int             `json:"total_items"`
	LowStockCount int             `json:"low_stock_count"`
	LowStockItems []Item          `json:"low_stock_items"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	SalesCount    int             `json:"sales_count"`
	TodayTotal    decimal.Decimal `json:"today_total"`
	TodayCount    int             `json:"today_count"`
	Weekly        []PeriodBucket  `json:"weekly"`
	Monthly       []PeriodBucket  `json:"monthly"`
	Categories    []CategoryShare `json:"categories"`
	TopItems      []ItemRanking   `json:"top_items"`
	GrowthRate    string          `json:"growth_rate"`
	UsingSample   bool            `json:"using_sample_data"`
	Notice        string          `json:"notice,omitempty"`
}

// PeriodBucket is one bar of a sales chart
type PeriodBucket struct {
	Label string          `json:"label"`
	Sales decimal.Decimal `json:"sales"`
	Count int             `json:"count"`
}

// CategoryShare is one slice of the item-by-category chart
type CategoryShare struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage string `json:"percentage"`
}

// ItemRanking represents an item ranked by units sold
type ItemRanking struct {
	ItemID       int64           `json:"item_id"`
	Name         string          `json:"name"`
	SoldQuantity int             `json:"sold_quantity"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// CategoryStats summarizes the items of one category
type CategoryStats struct {
	Category      Category        `json:"category"`
	TotalItems    int             `json:"total_items"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockItems int             `json:"low_stock_items"`
}
