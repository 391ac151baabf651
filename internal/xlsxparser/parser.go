// =============================================================================
// Category Launch Generator - XLSX Sheet Reader
// =============================================================================
//
// This module reads the category table from a spreadsheet workbook instead
// of a CSV export. The sheet must have the same layout as the CSV: one
// header row followed by one row per category.
//
// A SheetSource yields rows exactly like a CSV reader does, so the header
// check and row parsing in csvparser apply unchanged.
//
// SHEET SELECTION:
//   - An explicit sheet name is used as given.
//   - An empty name selects the first sheet of the workbook.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHEET SOURCE
// =============================================================================

// SheetSource streams rows from one worksheet. It satisfies
// csvparser.RowSource.
type SheetSource struct {
	file  *excelize.File
	rows  *excelize.Rows
	sheet string
}

// OpenSheet opens a workbook on disk and positions a SheetSource on sheet.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//   - sheet: The worksheet name. Empty selects the first sheet.
//
// RETURNS:
//   - A SheetSource that must be closed by the caller.
//   - An error if the workbook or sheet cannot be opened.
func OpenSheet(path, sheet string) (*SheetSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return newSheetSource(f, sheet)
}

// NewSheetSource reads a workbook from r, as received from an upload.
func NewSheetSource(r io.Reader, sheet string) (*SheetSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return newSheetSource(f, sheet)
}

func newSheetSource(f *excelize.File, sheet string) (*SheetSource, error) {
	name, err := resolveSheet(f, sheet)
	if err != nil {
		f.Close()
		return nil, err
	}

	rows, err := f.Rows(name)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", name, err)
	}

	return &SheetSource{file: f, rows: rows, sheet: name}, nil
}

// resolveSheet returns the sheet to read, checking that it exists.
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}

	if strings.TrimSpace(sheet) == "" {
		return sheets[0], nil
	}
	for _, name := range sheets {
		if name == sheet {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(sheets, ", "))
}

// Sheet returns the name of the worksheet being read.
func (s *SheetSource) Sheet() string {
	return s.sheet
}

// Read returns the next row, or io.EOF after the last one.
// Cells are returned as their formatted text; boolean cells read as
// TRUE or FALSE.
func (s *SheetSource) Read() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	cols, err := s.rows.Columns()
	if err != nil {
		return nil, err
	}
	// Empty rows come back as nil; report them as a single empty cell so
	// they are counted and skipped like blank CSV records.
	if cols == nil {
		cols = []string{""}
	}
	return cols, nil
}

// Close releases the row iterator and the workbook.
func (s *SheetSource) Close() error {
	rowsErr := s.rows.Close()
	fileErr := s.file.Close()
	return errors.Join(rowsErr, fileErr)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsWorkbook reports whether a file name looks like an .xlsx workbook.
func IsWorkbook(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}
