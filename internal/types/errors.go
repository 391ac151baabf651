package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Every failure of the pipeline is one of the types below. None of them is
// recoverable inside the pipeline: hosts report the message and fail.

// Stable error codes returned by Kind.
const (
	KindConfig      = "config_error"
	KindSchema      = "schema_error"
	KindRowFormat   = "row_format_error"
	KindMapping     = "mapping_error"
	KindEmptyResult = "empty_result"
	KindInternal    = "internal_error"
)

// ConfigError reports a malformed or incomplete configuration document.
type ConfigError struct {
	// Key is the dotted path of the offending entry, e.g.
	// "package_size_mapping.All shippable".
	Key string

	// Reason is a human-readable description of the problem.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Key != "" {
		fmt.Fprintf(&b, " at %q", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// SchemaError reports a header that does not satisfy the column contract.
type SchemaError struct {
	Missing      []string
	Duplicated   []string
	Unrecognized []string

	// Reason is set for structural problems such as an empty input.
	Reason string
}

func (e *SchemaError) Error() string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required columns: "+quoteAll(e.Missing))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, "duplicated columns: "+quoteAll(e.Duplicated))
	}
	if len(e.Unrecognized) > 0 {
		parts = append(parts, "unrecognized columns: "+quoteAll(e.Unrecognized))
	}
	return "schema error: " + strings.Join(parts, "; ")
}

// RowFormatError reports a single value that violates its column's format.
type RowFormatError struct {
	// Row is the 1-based data row number (header excluded).
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *RowFormatError) Error() string {
	return fmt.Sprintf("row %d, column %q: %s (value: %q)", e.Row, e.Column, e.Reason, e.Value)
}

// MappingError reports a value that has no entry in the mapping tables.
type MappingError struct {
	CategoryID int64

	// Table names the mapping table that was consulted.
	Table string

	// Value is the unmapped value.
	Value string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("category %d: no %s mapping for %q", e.CategoryID, e.Table, e.Value)
}

// EmptyResultError reports that no leaf category survived filtering.
type EmptyResultError struct {
	// RowsProcessed is the number of data rows that were read.
	RowsProcessed int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no leaf categories found (%d rows processed); refusing to generate an empty file", e.RowsProcessed)
}

// Kind returns the stable error code for err, or KindInternal for errors
// outside the taxonomy.
func Kind(err error) string {
	var (
		configErr  *ConfigError
		schemaErr  *SchemaError
		rowErr     *RowFormatError
		mappingErr *MappingError
		emptyErr   *EmptyResultError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &configErr):
		return KindConfig
	case errors.As(err, &schemaErr):
		return KindSchema
	case errors.As(err, &rowErr):
		return KindRowFormat
	case errors.As(err, &mappingErr):
		return KindMapping
	case errors.As(err, &emptyErr):
		return KindEmptyResult
	default:
		return KindInternal
	}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
