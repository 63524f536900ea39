// Package spreadsheet builds and reads the .xlsx workbooks used to bulk-load
// inventory and to export inventory and sales.
package spreadsheet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Column headers shared by templates and imports
const (
	ColID           = "ID"
	ColName         = "Name"
	ColCategory     = "Category"
	ColDescription  = "Description"
	ColPrice        = "Price (GHS)"
	ColStock        = "Stock"
	ColNotes        = "Notes"
	ColCurrentPrice = "Current Price (GHS)"
	ColNewPrice     = "New Price (GHS)"
	ColCurrentStock = "Current Stock"
	ColNewStock     = "New Stock"

	InstructionsSheet = "Instructions"
)

type column struct {
	header string
	width  float64
}

type sheetLayout struct {
	name    string
	columns []column
}

func (l sheetLayout) headers() []any {
	out := make([]any, len(l.columns))
	for i, c := range l.columns {
		out[i] = c.header
	}
	return out
}

var (
	newInventoryLayout = sheetLayout{name: "New Inventory", columns: []column{
		{ColName, 40}, {ColCategory, 15}, {ColDescription, 50}, {ColPrice, 15}, {ColStock, 12}, {ColNotes, 30},
	}}
	inventoryUpdateLayout = sheetLayout{name: "Inventory Update", columns: []column{
		{ColID, 8}, {ColName, 40}, {ColCategory, 15}, {ColDescription, 50},
		{ColCurrentPrice, 15}, {ColNewPrice, 15}, {ColCurrentStock, 12}, {ColNewStock, 12}, {ColNotes, 30},
	}}
	instructionsLayout = sheetLayout{name: InstructionsSheet, columns: []column{
		{"Column", 20}, {"Description", 50}, {"Required", 10},
	}}
	inventoryExportLayout = sheetLayout{name: "Inventory", columns: []column{
		{ColID, 8}, {ColName, 40}, {ColCategory, 15}, {ColDescription, 50},
		{ColPrice, 12}, {ColStock, 8}, {"Created Date", 12}, {"Last Updated", 12},
	}}
	salesExportLayout = sheetLayout{name: "Sales", columns: []column{
		{"Sale ID", 10}, {"Date", 12}, {"Time", 10}, {"Customer", 20},
		{"Payment Method", 15}, {"Total (GHS)", 12}, {"Items Count", 12}, {"Items", 60},
	}}
	detailedSalesLayout = sheetLayout{name: "Detailed Sales", columns: []column{
		{"Sale ID", 10}, {"Date", 12}, {"Time", 10}, {"Customer", 20}, {"Payment Method", 15},
		{"Item Name", 40}, {"Quantity", 10}, {"Unit Price (GHS)", 15}, {"Item Total (GHS)", 15}, {"Sale Total (GHS)", 15},
	}}
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// workbook accumulates sheets and serializes them
type workbook struct {
	f     *excelize.File
	first bool
	bold  int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &workbook{f: f, first: true, bold: bold}, nil
}

// addSheet writes a header row plus rows and applies the column widths
func (w *workbook) addSheet(layout sheetLayout, rows [][]any) error {
	name := layout.name
	if w.first {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		w.first = false
	} else if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}

	header := layout.headers()
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(layout.columns), 1)
	if err := w.f.SetCellStyle(name, "A1", last, w.bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, c := range layout.columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := w.f.SetColWidth(name, col, col, c.width); err != nil {
			return fmt.Errorf("set width %s: %w", col, err)
		}
	}
	return nil
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.f.Close()
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// FileName stamps a download name with the given day, e.g. "sales-2024-05-01.xlsx"
func FileName(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, day.Format(dateLayout))
}
