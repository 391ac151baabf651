// =============================================================================
// Category Launch Generator - Validation Engine
// =============================================================================
//
// This module checks an input table against the configuration without
// generating anything. Unlike conversion, which stops at the first problem,
// validation collects every problem so that a whole file can be fixed in
// one pass.
//
// CHECKS:
//   1. Header: required, duplicated and unrecognized columns
//   2. Rows: booleans, positive integers, duplicate category ids
//   3. Mapping: conditions and package sizes of every leaf row
//   4. Document: at least one leaf category
//   5. Configuration usage: package sizes never referenced (warning)
//
// ERROR HANDLING:
//   - Problems are collected as Issues, not returned as errors
//   - Each Issue carries the row, category and the underlying typed error
//   - Warnings never make a report invalid unless TreatWarningsAsErrors is set
//
// =============================================================================

package validation

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ginjaninja78/category-launch-generator/internal/config"
	"github.com/ginjaninja78/category-launch-generator/internal/converter"
	"github.com/ginjaninja78/category-launch-generator/internal/csvparser"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
	"github.com/ginjaninja78/category-launch-generator/internal/xlsxparser"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Issue represents a single validation problem.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Kind is the stable error code of Err, see types.Kind.
	Kind string

	// Row is the data row number, 0 for header and document issues.
	Row int

	// CategoryID is set for mapping issues.
	CategoryID int64

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (i *Issue) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", strings.ToUpper(i.Severity))
	if i.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", i.Row)
	}
	b.WriteString(i.Err.Error())
	return b.String()
}

// Unwrap returns the underlying error.
func (i *Issue) Unwrap() error { return i.Err }

// =============================================================================
// VALIDATION REPORT
// =============================================================================

// Report contains the results of validation.
type Report struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Issues contains all problems, ordered by row.
	Issues []*Issue

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsChecked is the number of data rows read.
	RowsChecked int

	// LeafCount is the number of leaf rows that mapped cleanly.
	LeafCount int

	// Skipped is the number of valid non-leaf rows.
	Skipped int
}

func (r *Report) add(issue *Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// Errors returns the issues with error severity.
func (r *Report) Errors() []*Issue {
	var out []*Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// StopOnFirstError stops after the first error, like conversion does.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors makes warnings invalidate the report.
	// Default: false
	TreatWarningsAsErrors bool

	// WarnUnusedPackageSizes reports package size labels that no leaf uses.
	// Default: true
	WarnUnusedPackageSizes bool
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{
		WarnUnusedPackageSizes: true,
	}
}

// Validator checks inputs against one configuration.
type Validator struct {
	cfg     *config.Config
	mapper  *converter.Mapper
	options Options
}

// NewValidator creates a new Validator instance.
func NewValidator(cfg *config.Config) *Validator {
	return NewValidatorWithOptions(cfg, DefaultOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(cfg *config.Config, options Options) *Validator {
	return &Validator{
		cfg:     cfg,
		mapper:  converter.NewMapper(cfg.Tables),
		options: options,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// Validate checks every row of src and returns the report.
// This is the main entry point for validation.
//
// PARAMETERS:
//   - src: The rows to check, header first.
//   - cfg: The configuration holding the mapping tables.
//
// RETURNS:
//   - The report with every problem found.
//   - An error only if src itself fails (I/O, malformed CSV quoting).
func Validate(src csvparser.RowSource, cfg *config.Config) (*Report, error) {
	return NewValidator(cfg).ValidateRows(src)
}

// ValidateReader checks a CSV table read from r.
func (v *Validator) ValidateReader(r io.Reader) (*Report, error) {
	src, err := csvparser.NewCSVSource(r, v.cfg.CSV)
	if err != nil {
		return nil, err
	}
	return v.ValidateRows(src)
}

// ValidateFile checks the file at path, CSV or workbook.
func (v *Validator) ValidateFile(path string) (*Report, error) {
	if xlsxparser.IsWorkbook(path) {
		src, err := xlsxparser.OpenSheet(path, v.cfg.CSV.Sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer src.Close()
		return v.ValidateRows(src)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return v.ValidateReader(f)
}

// ValidateRows checks every row of src.
func (v *Validator) ValidateRows(src csvparser.RowSource) (*Report, error) {
	report := &Report{}

	opts := csvparser.OptionsFrom(v.cfg.CSV)
	opts.ContinueOnRowError = !v.options.StopOnFirstError

	reader, err := csvparser.NewReader(src, opts)
	if err != nil {
		if types.Kind(err) == types.KindInternal {
			return nil, err
		}
		report.add(newIssue(SeverityError, 0, 0, err))
		v.finish(report)
		return report, nil
	}

	usedLabels := make(map[string]bool)

	for reader.Next() {
		rec := reader.Record()
		if !rec.IsLeaf {
			report.Skipped++
			continue
		}

		if _, err := v.mapper.Map(rec); err != nil {
			report.add(newIssue(SeverityError, rec.RowNumber, rec.CategoryID, err))
			if v.options.StopOnFirstError {
				break
			}
			continue
		}

		usedLabels[rec.PackageSizeLabel] = true
		report.LeafCount++
	}
	report.RowsChecked = reader.RowNumber()

	if err := reader.Err(); err != nil {
		var rowErr *types.RowFormatError
		if !errors.As(err, &rowErr) {
			return nil, err
		}
		report.add(newIssue(SeverityError, rowErr.Row, 0, rowErr))
	}
	for _, rowErr := range reader.RowErrors() {
		report.add(newIssue(SeverityError, rowErr.Row, 0, rowErr))
	}

	if report.LeafCount == 0 && report.ErrorCount == 0 {
		report.add(newIssue(SeverityError, 0, 0, &types.EmptyResultError{RowsProcessed: report.RowsChecked}))
	}

	if v.options.WarnUnusedPackageSizes && report.ErrorCount == 0 {
		for _, label := range v.cfg.Tables.PackageSizeLabels() {
			if !usedLabels[label] {
				report.add(newIssue(SeverityWarning, 0, 0, fmt.Errorf("package size %q is mapped but no leaf category uses it", label)))
			}
		}
	}

	v.finish(report)
	return report, nil
}

// finish orders the issues and computes validity.
func (v *Validator) finish(report *Report) {
	slices.SortStableFunc(report.Issues, func(a, b *Issue) int {
		return cmp.Compare(a.Row, b.Row)
	})

	report.IsValid = report.ErrorCount == 0
	if v.options.TreatWarningsAsErrors && report.WarningCount > 0 {
		report.IsValid = false
	}
}

func newIssue(severity string, row int, categoryID int64, err error) *Issue {
	kind := types.Kind(err)
	if severity == SeverityWarning {
		kind = ""
	}
	return &Issue{
		Severity:   severity,
		Kind:       kind,
		Row:        row,
		CategoryID: categoryID,
		Err:        err,
	}
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

// FormatIssues formats validation issues for display or logging.
//
// PARAMETERS:
//   - issues: The validation issues to format.
//
// RETURNS:
//   - A formatted string containing all issues.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	fmt.Fprintf(&builder, "Validation completed with %d issue(s):\n\n", len(issues))

	for i, issue := range issues {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, issue.Error())
	}

	return builder.String()
}

// WriteIssueLog writes validation issues to a log file.
func WriteIssueLog(issues []*Issue, filePath string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create issue log: %w", err)
	}

	if _, err := io.WriteString(f, FormatIssues(issues)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write issue log: %w", err)
	}
	return f.Close()
}
