package spreadsheet

import (
	"errors"
	"fmt"
)

// Row issue codes
const (
	CodeMissingFields = "MISSING_FIELDS"
	CodeInvalidPrice  = "INVALID_PRICE"
	CodeInvalidStock  = "INVALID_STOCK"
	CodeInvalidID     = "INVALID_ID"
	CodeNoChanges     = "NO_CHANGES"
)

var (
	// ErrNoDataSheet is returned when the workbook only has an Instructions sheet
	ErrNoDataSheet = errors.New("workbook has no data sheet")
	// ErrUnreadable wraps any failure to open the uploaded file as a workbook
	ErrUnreadable = errors.New("failed to read file")
)

// RowIssue is an error or warning tied to one spreadsheet row. Row is the
// sheet row number, so the header is row 1 and the first data row is row 2.
type RowIssue struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i RowIssue) Error() string {
	return fmt.Sprintf("Row %d: %s", i.Row, i.Message)
}

func newIssue(row int, code, format string, args ...any) RowIssue {
	return RowIssue{Row: row, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Messages renders issues the way the upload screen lists them
func Messages(issues []RowIssue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Error()
	}
	return out
}
