// =============================================================================
// Category Launch Generator - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline for one input table, from
// row parsing to Kotlin generation.
//
// CONVERSION PIPELINE:
//   1. Read and check the header row
//   2. Parse and validate every data row
//   3. Keep the leaf rows, in input order
//   4. Map each leaf through the configured tables
//   5. Generate the Kotlin source
//
// The pipeline is single-pass and all-or-nothing: the first error aborts
// the run and no output is produced.
//
// CONCURRENCY:
//   A Converter only reads its configuration. One Converter can serve
//   several conversions at the same time.
//
// =============================================================================

package converter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ginjaninja78/category-launch-generator/internal/config"
	"github.com/ginjaninja78/category-launch-generator/internal/csvparser"
	"github.com/ginjaninja78/category-launch-generator/internal/kotlinwriter"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
	"github.com/ginjaninja78/category-launch-generator/internal/xlsxparser"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one conversion.
type Result struct {
	// Output is the generated Kotlin source. Nil if the conversion failed.
	Output []byte

	// Models are the mapped leaf categories, in input order.
	Models []types.GeneratedModel

	// Stats contains processing statistics. Filled as far as the
	// conversion got, also on failure.
	Stats Stats
}

// Stats contains statistics about the processing.
type Stats struct {
	// RowsProcessed is the number of data rows read, blank rows included.
	RowsProcessed int

	// LeafCount is the number of leaf rows, one per generated block.
	LeafCount int

	// Skipped is the number of non-leaf rows.
	Skipped int

	// Blank is the number of blank rows.
	Blank int

	// Duration is the time taken by the conversion.
	Duration time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline with one shared configuration.
type Converter struct {
	cfg     *config.Config
	mapper  *Mapper
	options kotlinwriter.GenerateOptions
	logger  Logger
	onRow   func(row int)
}

// Logger is an interface for logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRowObserver registers a callback invoked after every data row is read.
func WithRowObserver(fn func(row int)) Option {
	return func(c *Converter) {
		c.onRow = fn
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - cfg: The loaded configuration. It is shared, never modified.
//   - opts: Optional settings such as the logger.
func New(cfg *config.Config, opts ...Option) *Converter {
	c := &Converter{
		cfg:     cfg,
		mapper:  NewMapper(cfg.Tables),
		options: kotlinwriter.OptionsFromConfig(cfg),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Convert reads a CSV table from r and generates the Kotlin source.
//
// RETURNS:
//   - A Result, always non-nil.
//   - The first error of the pipeline, if any.
func (c *Converter) Convert(r io.Reader) (*Result, error) {
	src, err := csvparser.NewCSVSource(r, c.cfg.CSV)
	if err != nil {
		return &Result{}, err
	}
	return c.ConvertRows(src)
}

// ConvertFile converts the file at path. Workbooks (.xlsx) are read from
// the configured sheet; anything else is read as CSV.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	if xlsxparser.IsWorkbook(path) {
		src, err := xlsxparser.OpenSheet(path, c.cfg.CSV.Sheet)
		if err != nil {
			return &Result{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer src.Close()

		c.logger.Debug("Reading workbook", "path", path, "sheet", src.Sheet())
		return c.ConvertRows(src)
	}

	f, err := os.Open(path)
	if err != nil {
		return &Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return c.Convert(f)
}

// ConvertRows runs the pipeline over any row source.
func (c *Converter) ConvertRows(src csvparser.RowSource) (*Result, error) {
	start := time.Now()
	result := &Result{}
	defer func() {
		result.Stats.Duration = time.Since(start)
	}()

	// =========================================================================
	// STEP 1: HEADER
	// =========================================================================

	opts := csvparser.OptionsFrom(c.cfg.CSV)
	opts.OnRow = c.onRow

	reader, err := csvparser.NewReader(src, opts)
	if err != nil {
		c.logger.Error("Header check failed", "error", err)
		return result, err
	}

	// =========================================================================
	// STEP 2-4: PARSE, FILTER AND MAP ROWS
	// =========================================================================

	for reader.Next() {
		rec := reader.Record()
		if !rec.IsLeaf {
			result.Stats.Skipped++
			continue
		}

		model, err := c.mapper.Map(rec)
		if err != nil {
			fillRowStats(result, reader)
			c.logger.Error("Mapping failed", "row", rec.RowNumber, "error", err)
			return result, err
		}

		result.Models = append(result.Models, model)
		result.Stats.LeafCount++
	}
	fillRowStats(result, reader)

	if err := reader.Err(); err != nil {
		c.logger.Error("Row validation failed", "error", err)
		return result, err
	}

	c.logger.Debug("Parsed rows",
		"rows", result.Stats.RowsProcessed,
		"leaves", result.Stats.LeafCount,
		"skipped", result.Stats.Skipped,
		"blank", result.Stats.Blank,
	)

	if len(result.Models) == 0 {
		err := &types.EmptyResultError{RowsProcessed: result.Stats.RowsProcessed}
		c.logger.Warn("Nothing to generate", "rows", result.Stats.RowsProcessed)
		return result, err
	}

	// =========================================================================
	// STEP 5: GENERATE KOTLIN
	// =========================================================================

	output, err := kotlinwriter.Generate(result.Models, c.options)
	if err != nil {
		return result, fmt.Errorf("failed to generate Kotlin: %w", err)
	}
	result.Output = output

	c.logger.Info("Generated category models", "leaves", result.Stats.LeafCount, "bytes", len(output))

	return result, nil
}

func fillRowStats(result *Result, reader *csvparser.Reader) {
	result.Stats.RowsProcessed = reader.RowNumber()
	result.Stats.Blank = reader.BlankRows()
}
