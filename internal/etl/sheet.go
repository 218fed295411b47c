package etl

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is a parsed spreadsheet: the first row of the first worksheet as
// headers (order preserved) and every following row as raw string cells.
type Sheet struct {
	Headers []string
	Rows    [][]string
}

// ReadSheet opens an Excel workbook and reads the first worksheet.
func ReadSheet(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, &ValidationError{Msg: "spreadsheet is empty"}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return &Sheet{Headers: headers, Rows: rows[1:]}, nil
}

// ColumnIndex returns the position of a header, or -1 when absent. Matching
// is case-insensitive on the sanitized form.
func (s *Sheet) ColumnIndex(name string) int {
	want := SanitizeColumnName(name)
	for i, h := range s.Headers {
		if SanitizeColumnName(h) == want {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the sheet declares a header for name.
func (s *Sheet) HasColumn(name string) bool {
	return s.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, col), tolerating the ragged rows excelize
// produces when trailing cells are blank.
func (s *Sheet) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Value returns the cell of a row under the named header, "" when the
// header is absent.
func (s *Sheet) Value(row []string, header string) string {
	return s.Cell(row, s.ColumnIndex(header))
}
