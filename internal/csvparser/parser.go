// =============================================================================
// Category Launch Generator - CSV Parser Module
// =============================================================================
//
// This module turns the raw category table into validated CategoryRecords.
//
// FEATURES:
//   - Configurable delimiter and input encoding
//   - One header check against the recognized column set, before any row
//   - Typed parsing with a single error type (RowFormatError) per value
//   - Row-by-row streaming through Reader; Parse collects everything
//   - Any RowSource works, so spreadsheet sheets share the same rules
//
// ROW NUMBERING:
//   Rows are numbered from 1 starting with the first record after the header.
//   Records whose cells are all empty are skipped but still counted. Fully
//   empty lines are dropped by encoding/csv and are not counted.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/category-launch-generator/internal/config"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
	"golang.org/x/text/transform"
)

// =============================================================================
// ROW SOURCES
// =============================================================================

// RowSource yields raw rows. It returns io.EOF after the last row.
// *csv.Reader satisfies it directly.
type RowSource interface {
	Read() ([]string, error)
}

// NewCSVSource wraps r in the configured decoder and returns a CSV reader.
//
// PARAMETERS:
//   - r: The raw input bytes.
//   - settings: Delimiter and encoding from the configuration.
//
// RETURNS:
//   - A RowSource over the decoded text.
//   - An error if the settings cannot be resolved.
func NewCSVSource(r io.Reader, settings config.CSVSettings) (RowSource, error) {
	enc, err := config.LookupEncoding(settings.Encoding)
	if err != nil {
		return nil, &types.ConfigError{Key: "csv.encoding", Reason: err.Error()}
	}
	comma, err := settings.Comma()
	if err != nil {
		return nil, &types.ConfigError{Key: "csv.delimiter", Reason: err.Error()}
	}

	decoded := transform.NewReader(bufio.NewReader(r), enc.NewDecoder())

	reader := csv.NewReader(decoded)
	configureReader(reader, comma)

	return reader, nil
}

// configureReader applies the reading rules shared by every CSV input.
func configureReader(reader *csv.Reader, comma rune) {
	reader.Comma = comma

	// Short rows are reported per value, not by the csv package.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false
}

// =============================================================================
// READER
// =============================================================================

// Options tunes a Reader.
type Options struct {
	// AllowExtraColumns ignores header columns outside the recognized set.
	AllowExtraColumns bool

	// ContinueOnRowError records row errors and moves on instead of
	// stopping. Conversion never sets this; the validation report does.
	ContinueOnRowError bool

	// OnRow is called after every data row is read, blank rows included.
	OnRow func(rowNumber int)
}

// OptionsFrom derives reader options from the CSV settings.
func OptionsFrom(settings config.CSVSettings) Options {
	return Options{AllowExtraColumns: settings.AllowExtraColumns}
}

// Reader streams CategoryRecords from a RowSource.
//
// USAGE:
//
//	reader, err := NewReader(src, opts)
//	if err != nil {
//	    return err
//	}
//	for reader.Next() {
//	    record := reader.Record()
//	    // ...
//	}
//	if err := reader.Err(); err != nil {
//	    return err
//	}
type Reader struct {
	src       RowSource
	opts      Options
	columns   map[string]int
	current   types.CategoryRecord
	rowNumber int
	blankRows int
	seenIDs   map[int64]int
	rowErrors []*types.RowFormatError
	err       error
}

// NewReader reads and checks the header row.
//
// RETURNS:
//   - A Reader positioned before the first data row.
//   - A *types.SchemaError if the header breaks the column contract.
func NewReader(src RowSource, opts Options) (*Reader, error) {
	header, err := src.Read()
	if errors.Is(err, io.EOF) {
		return nil, &types.SchemaError{Reason: "input is empty, expected a header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns, err := checkHeader(header, opts.AllowExtraColumns)
	if err != nil {
		return nil, err
	}

	return &Reader{
		src:     src,
		opts:    opts,
		columns: columns,
		seenIDs: make(map[int64]int),
	}, nil
}

// checkHeader validates the header and returns the column index for every
// recognized column.
func checkHeader(header []string, allowExtra bool) (map[string]int, error) {
	recognized := make(map[string]bool)
	for _, col := range types.RequiredColumns() {
		recognized[col] = true
	}

	columns := make(map[string]int, len(header))
	schemaErr := &types.SchemaError{}
	seen := make(map[string]bool, len(header))

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if seen[name] {
			schemaErr.Duplicated = append(schemaErr.Duplicated, name)
			continue
		}
		seen[name] = true

		if !recognized[name] {
			if !allowExtra {
				schemaErr.Unrecognized = append(schemaErr.Unrecognized, name)
			}
			continue
		}
		columns[name] = i
	}

	for _, col := range types.RequiredColumns() {
		if _, ok := columns[col]; !ok {
			schemaErr.Missing = append(schemaErr.Missing, col)
		}
	}

	if len(schemaErr.Missing) > 0 || len(schemaErr.Duplicated) > 0 || len(schemaErr.Unrecognized) > 0 {
		return nil, schemaErr
	}
	return columns, nil
}

// Next advances to the next record. It returns false at the end of the
// input or on the first error (see Err).
func (r *Reader) Next() bool {
	for r.err == nil {
		row, err := r.src.Read()
		if errors.Is(err, io.EOF) {
			return false
		}
		r.rowNumber++
		if r.opts.OnRow != nil {
			r.opts.OnRow(r.rowNumber)
		}
		if err != nil {
			r.err = fmt.Errorf("reading row %d: %w", r.rowNumber, err)
			return false
		}

		if isRowEmpty(row) {
			r.blankRows++
			continue
		}

		record, rowErr := r.parseRow(row)
		if rowErr != nil {
			if r.opts.ContinueOnRowError {
				r.rowErrors = append(r.rowErrors, rowErr)
				continue
			}
			r.err = rowErr
			return false
		}

		r.current = record
		return true
	}
	return false
}

// Record returns the record read by the last successful Next.
func (r *Reader) Record() types.CategoryRecord {
	return r.current
}

// Err returns the error that stopped the reader, if any.
func (r *Reader) Err() error {
	return r.err
}

// RowErrors returns the row errors collected with ContinueOnRowError.
func (r *Reader) RowErrors() []*types.RowFormatError {
	return r.rowErrors
}

// RowNumber returns the number of data rows read so far.
func (r *Reader) RowNumber() int {
	return r.rowNumber
}

// BlankRows returns the number of blank rows skipped so far.
func (r *Reader) BlankRows() int {
	return r.blankRows
}

// =============================================================================
// ROW PARSING
// =============================================================================

// parseRow converts one raw row. Each column is parsed exactly once.
func (r *Reader) parseRow(row []string) (types.CategoryRecord, *types.RowFormatError) {
	record := types.CategoryRecord{
		RowNumber:             r.rowNumber,
		VisibleFields:         make(map[string]bool, len(types.VisibilityColumns)),
		ConditionAvailability: make(map[string]bool, len(types.ConditionColumns)),
	}

	var err *types.RowFormatError

	if record.IsLeaf, err = r.boolColumn(row, types.ColumnLeaf); err != nil {
		return record, err
	}
	if record.CategoryID, err = r.positiveIntColumn(row, types.ColumnID); err != nil {
		return record, err
	}
	if record.CategoryLevel, err = r.positiveIntColumn(row, types.ColumnLevel); err != nil {
		return record, err
	}

	for _, col := range types.VisibilityColumns {
		visible, err := r.boolColumn(row, col)
		if err != nil {
			return record, err
		}
		record.VisibleFields[col] = visible
	}

	record.PackageSizeLabel = r.value(row, types.ColumnPackageSize)

	for _, col := range types.ConditionColumns {
		available, err := r.boolColumn(row, col)
		if err != nil {
			return record, err
		}
		record.ConditionAvailability[col] = available
	}

	if firstRow, dup := r.seenIDs[record.CategoryID]; dup {
		return record, &types.RowFormatError{
			Row:    r.rowNumber,
			Column: types.ColumnID,
			Value:  strconv.FormatInt(record.CategoryID, 10),
			Reason: fmt.Sprintf("duplicate category id (first seen in row %d)", firstRow),
		}
	}
	r.seenIDs[record.CategoryID] = r.rowNumber

	return record, nil
}

// value returns the trimmed cell for column, or "" for short rows.
func (r *Reader) value(row []string, column string) string {
	idx := r.columns[column]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (r *Reader) boolColumn(row []string, column string) (bool, *types.RowFormatError) {
	raw := r.value(row, column)
	v, ok := ParseBool(raw)
	if !ok {
		return false, &types.RowFormatError{Row: r.rowNumber, Column: column, Value: raw, Reason: "expected TRUE or FALSE"}
	}
	return v, nil
}

func (r *Reader) positiveIntColumn(row []string, column string) (int64, *types.RowFormatError) {
	raw := r.value(row, column)
	v, ok := ParsePositiveInt(raw)
	if !ok {
		return 0, &types.RowFormatError{Row: r.rowNumber, Column: column, Value: raw, Reason: "expected a positive integer"}
	}
	return v, nil
}

// ParseBool accepts TRUE and FALSE in any letter case.
func ParseBool(s string) (value bool, ok bool) {
	switch {
	case strings.EqualFold(s, "TRUE"):
		return true, true
	case strings.EqualFold(s, "FALSE"):
		return false, true
	default:
		return false, false
	}
}

// ParsePositiveInt accepts base-10 integers greater than zero.
func ParsePositiveInt(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Parse reads a whole CSV input into records.
func Parse(r io.Reader, settings config.CSVSettings) ([]types.CategoryRecord, error) {
	src, err := NewCSVSource(r, settings)
	if err != nil {
		return nil, err
	}
	return ParseRows(src, OptionsFrom(settings))
}

// ParseRows reads every record from src, stopping at the first error.
func ParseRows(src RowSource, opts Options) ([]types.CategoryRecord, error) {
	opts.ContinueOnRowError = false

	reader, err := NewReader(src, opts)
	if err != nil {
		return nil, err
	}

	var records []types.CategoryRecord
	for reader.Next() {
		records = append(records, reader.Record())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// LeafRecords returns the leaf records, keeping input order.
func LeafRecords(records []types.CategoryRecord) []types.CategoryRecord {
	var leaves []types.CategoryRecord
	for _, rec := range records {
		if rec.IsLeaf {
			leaves = append(leaves, rec)
		}
	}
	return leaves
}
