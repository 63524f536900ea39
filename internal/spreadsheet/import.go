package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// NewItemRow is one accepted row of a new-inventory upload
type NewItemRow struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Notes       string          `json:"notes,omitempty"`
}

// Input converts the row to an item creation payload
func (r NewItemRow) Input() model.ItemInput {
	return model.ItemInput{
		Name:          r.Name,
		Category:      r.Category,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.Stock,
	}
}

// NewInventoryResult collects accepted rows and per-row problems
type NewInventoryResult struct {
	Items    []NewItemRow `json:"newItems"`
	Errors   []RowIssue   `json:"errors"`
	Warnings []RowIssue   `json:"warnings"`
}

// UpdateRow is one accepted row of an inventory-update upload. Nil Price or Stock
// means the column was left blank.
type UpdateRow struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Notes       string           `json:"notes,omitempty"`
}

// Patch converts the row to a bulk-update entry
func (r UpdateRow) Patch() model.ItemPatch {
	desc := r.Description
	return model.ItemPatch{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Description: &desc,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

// UpdateResult collects accepted update rows and per-row problems
type UpdateResult struct {
	Updates  []UpdateRow `json:"updates"`
	Errors   []RowIssue  `json:"errors"`
	Warnings []RowIssue  `json:"warnings"`
}

// record is one data row addressed by header name
type record struct {
	row    int
	values map[string]string
}

func (r record) get(col string) string {
	return strings.TrimSpace(r.values[col])
}

func (r record) blank() bool {
	for _, v := range r.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// readRecords opens the workbook and returns the rows of the first sheet not
// named Instructions
func readRecords(r io.Reader) ([]record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheet := ""
	for _, name := range f.GetSheetList() {
		if name != InstructionsSheet {
			sheet = name
			break
		}
	}
	if sheet == "" {
		return nil, ErrNoDataSheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]record, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		rec := record{row: i + 2, values: make(map[string]string, len(header))}
		for c, name := range header {
			if c < len(cells) {
				rec.values[strings.TrimSpace(name)] = cells[c]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parsePrice(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// MaxStock is the largest stock quantity an import accepts
const MaxStock = math.MaxInt32

var maxStockDecimal = decimal.NewFromInt(MaxStock)

func parseStock(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0 && n <= MaxStock
	}
	// numeric cells may come back as "12.0"
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() || d.IsNegative() || d.GreaterThan(maxStockDecimal) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// ImportNewInventory validates a filled new-inventory template. Fully blank rows
// are skipped; every other invalid row yields one error and is left out.
func ImportNewInventory(r io.Reader) (NewInventoryResult, error) {
	res := NewInventoryResult{Items: []NewItemRow{}, Errors: []RowIssue{}, Warnings: []RowIssue{}}

	records, err := readRecords(r)
	if err != nil {
		return res, err
	}

	for _, rec := range records {
		name, category := rec.get(ColName), rec.get(ColCategory)
		priceRaw, stockRaw := rec.get(ColPrice), rec.get(ColStock)

		if name == "" || category == "" || priceRaw == "" || stockRaw == "" {
			if name != "" || category != "" || priceRaw != "" || stockRaw != "" {
				res.Errors = append(res.Errors, newIssue(rec.row, CodeMissingFields,
					"Missing required fields (Name, Category, Price, or Stock)"))
			}
			continue
		}

		price, ok := parsePrice(priceRaw)
		if !ok {
			res.Errors = append(res.Errors, newIssue(rec.row, CodeInvalidPrice, "Invalid price value for %q", name))
			continue
		}
		stock, ok := parseStock(stockRaw)
		if !ok {
			res.Errors = append(res.Errors, newIssue(rec.row, CodeInvalidStock, "Invalid stock value for %q", name))
			continue
		}

		res.Items = append(res.Items, NewItemRow{
			Name:        name,
			Category:    category,
			Description: rec.get(ColDescription),
			Price:       price,
			Stock:       stock,
			Notes:       rec.get(ColNotes),
		})
	}
	return res, nil
}

// ImportInventoryUpdates validates a filled inventory-update template. Rows with
// neither a new price nor a new stock are kept but produce a warning.
func ImportInventoryUpdates(r io.Reader) (UpdateResult, error) {
	res := UpdateResult{Updates: []UpdateRow{}, Errors: []RowIssue{}, Warnings: []RowIssue{}}

	records, err := readRecords(r)
	if err != nil {
		return res, err
	}

	for _, rec := range records {
		if rec.blank() {
			continue
		}

		idRaw, name, category := rec.get(ColID), rec.get(ColName), rec.get(ColCategory)
		if idRaw == "" || name == "" || category == "" {
			res.Errors = append(res.Errors, newIssue(rec.row, CodeMissingFields,
				"Missing required fields (ID, Name, or Category)"))
			continue
		}

		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil {
			res.Errors = append(res.Errors, newIssue(rec.row, CodeInvalidID, "Invalid ID format"))
			continue
		}

		row := UpdateRow{
			ID:          id,
			Name:        name,
			Category:    category,
			Description: rec.get(ColDescription),
			Notes:       rec.get(ColNotes),
		}

		if raw := rec.get(ColNewPrice); raw != "" {
			price, ok := parsePrice(raw)
			if !ok {
				res.Errors = append(res.Errors, newIssue(rec.row, CodeInvalidPrice, "Invalid new price value"))
				continue
			}
			row.Price = &price
		}
		if raw := rec.get(ColNewStock); raw != "" {
			stock, ok := parseStock(raw)
			if !ok {
				res.Errors = append(res.Errors, newIssue(rec.row, CodeInvalidStock, "Invalid new stock value"))
				continue
			}
			row.Stock = &stock
		}

		if row.Price == nil && row.Stock == nil {
			res.Warnings = append(res.Warnings, newIssue(rec.row, CodeNoChanges, "No updates specified for item %q", name))
		}
		res.Updates = append(res.Updates, row)
	}
	return res, nil
}
