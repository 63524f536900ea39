package spreadsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// DateRange bounds a detailed sales report, both ends inclusive
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// ExportInventory writes every item to a single Inventory sheet
func ExportInventory(items []model.Item) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			it.ID, it.Name, it.Category, it.Description,
			it.Price.InexactFloat64(), it.StockQuantity,
			formatDay(it.CreatedAt), formatDay(it.UpdatedAt),
		})
	}
	if err := wb.addSheet(inventoryExportLayout, rows); err != nil {
		return nil, err
	}
	return wb.bytes()
}

func lineName(l model.SaleLine) string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("Item #%d", l.ItemID)
}

// ExportSales writes one row per sale
func ExportSales(sales []model.Sale) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(sales))
	for _, s := range sales {
		parts := make([]string, len(s.Items))
		for i, l := range s.Items {
			parts[i] = fmt.Sprintf("%s (%d)", lineName(l), l.Quantity)
		}
		rows = append(rows, []any{
			s.ID, s.CreatedAt.Format(dateLayout), s.CreatedAt.Format(timeLayout),
			s.CustomerName, s.PaymentMethod, s.TotalAmount.InexactFloat64(),
			len(s.Items), strings.Join(parts, "; "),
		})
	}
	if err := wb.addSheet(salesExportLayout, rows); err != nil {
		return nil, err
	}
	return wb.bytes()
}

// ExportDetailedSales writes one row per sale line, optionally limited to a date range
func ExportDetailedSales(sales []model.Sale, dateRange *DateRange) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	var rows [][]any
	for _, s := range sales {
		if dateRange != nil && !dateRange.contains(s.CreatedAt) {
			continue
		}
		for _, l := range s.Items {
			rows = append(rows, []any{
				s.ID, s.CreatedAt.Format(dateLayout), s.CreatedAt.Format(timeLayout),
				s.CustomerName, s.PaymentMethod, lineName(l), l.Quantity,
				l.Price.InexactFloat64(), l.LineTotal().InexactFloat64(), s.TotalAmount.InexactFloat64(),
			})
		}
	}
	if err := wb.addSheet(detailedSalesLayout, rows); err != nil {
		return nil, err
	}
	return wb.bytes()
}

// DetailedSalesFileName names the report after its range, or today when unbounded
func DetailedSalesFileName(dateRange *DateRange, today time.Time) string {
	if dateRange == nil {
		return FileName("detailed-sales", today)
	}
	return fmt.Sprintf("detailed-sales-%s-to-%s.xlsx", dateRange.Start.Format(dateLayout), dateRange.End.Format(dateLayout))
}
