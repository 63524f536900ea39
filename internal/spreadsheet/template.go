package spreadsheet

import (
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

var newInventoryInstructions = [][]any{
	{ColName, "Item name (required)", "Yes"},
	{ColCategory, "Item category (required)", "Yes"},
	{ColDescription, "Item description (optional)", "No"},
	{ColPrice, "Item price in Ghana Cedis (required)", "Yes"},
	{ColStock, "Initial stock quantity (required)", "Yes"},
	{ColNotes, "Any additional notes or comments", "No"},
}

var inventoryUpdateInstructions = [][]any{
	{ColID, "Item ID (DO NOT CHANGE - used for matching)", "Yes"},
	{ColName, "Item name (can be updated)", "Yes"},
	{ColCategory, "Item category (can be updated)", "Yes"},
	{ColDescription, "Item description (optional)", "No"},
	{ColCurrentPrice, "Current price (read-only)", "No"},
	{ColNewPrice, "New price to update (leave unchanged if no update)", "No"},
	{ColCurrentStock, "Current stock level (read-only)", "No"},
	{ColNewStock, "New stock level to update (leave unchanged if no update)", "No"},
	{ColNotes, "Any additional notes or comments", "No"},
}

// NewInventoryTemplate returns an empty workbook for adding items in bulk
func NewInventoryTemplate() ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	if err := wb.addSheet(newInventoryLayout, nil); err != nil {
		return nil, err
	}
	if err := wb.addSheet(instructionsLayout, newInventoryInstructions); err != nil {
		return nil, err
	}
	return wb.bytes()
}

// InventoryUpdateTemplate pre-fills one row per item, with the new price and
// stock columns set to the current values
func InventoryUpdateTemplate(items []model.Item) ([]byte, error) {
	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		price := it.Price.InexactFloat64()
		rows = append(rows, []any{
			it.ID, it.Name, it.Category, it.Description,
			price, price, it.StockQuantity, it.StockQuantity, "",
		})
	}
	if err := wb.addSheet(inventoryUpdateLayout, rows); err != nil {
		return nil, err
	}
	if err := wb.addSheet(instructionsLayout, inventoryUpdateInstructions); err != nil {
		return nil, err
	}
	return wb.bytes()
}
