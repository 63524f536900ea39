package service

import (
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// sampleSeed keeps the placeholder dashboard stable between reloads
const sampleSeed = 2024

var sampleCategories = []string{"Books", "Stationery", "Uniforms", "Electronics", "Other"}

// SampleData builds the placeholder catalogue and sales shown while the backend
// is unreachable. Sales are spread over the 30 days before now.
func SampleData(now time.Time) ([]model.Item, []model.Sale) {
	f := gofakeit.New(sampleSeed)
	created := startOfDay(now).AddDate(0, -1, 0)

	items := make([]model.Item, 0, 12)
	for i := 1; i <= 12; i++ {
		items = append(items, model.Item{
			ID:            int64(i),
			Name:          f.BookTitle(),
			Category:      f.RandomString(sampleCategories),
			Description:   f.Sentence(10),
			Price:         decimal.NewFromFloat(f.Price(5, 90)).Round(2),
			StockQuantity: f.Number(0, 100),
			CreatedAt:     created,
			UpdatedAt:     created,
		})
	}

	methods := []string{model.PaymentCash, model.PaymentCard, model.PaymentMobileMoney}
	sales := make([]model.Sale, 0, 20)
	for i := 1; i <= 20; i++ {
		lines := make([]model.SaleLine, 0, 2)
		total := decimal.Zero
		for n := f.Number(1, 2); n > 0; n-- {
			item := items[f.Number(0, len(items)-1)]
			line := model.SaleLine{ItemID: item.ID, Name: item.Name, Quantity: f.Number(1, 3), Price: item.Price}
			total = total.Add(line.LineTotal())
			lines = append(lines, line)
		}
		at := now.Add(-time.Duration(f.Number(0, 30*24*60)) * time.Minute)
		sales = append(sales, model.Sale{
			ID:            int64(i),
			Items:         lines,
			PaymentMethod: f.RandomString(methods),
			CustomerName:  model.DefaultCustomerName,
			TotalAmount:   total,
			CreatedAt:     at,
		})
	}
	return items, sales
}
