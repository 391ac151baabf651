package utils

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/ginjaninja78/category-launch-generator/internal/converter"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
)

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// Summary describes one conversion the same way for every host.
type Summary struct {
	Input         string        `json:"input"`
	Output        string        `json:"output,omitempty"`
	RowsProcessed int           `json:"rows_processed"`
	LeafCount     int           `json:"leaf_count"`
	Skipped       int           `json:"skipped"`
	Blank         int           `json:"blank"`
	Duration      time.Duration `json:"duration_ns"`
	ErrorKind     string        `json:"error_kind,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// NewSummary builds a Summary from a conversion result and its error.
// result may be nil.
func NewSummary(input, output string, result *converter.Result, err error) Summary {
	s := Summary{Input: input, Output: output}
	if result != nil {
		s.RowsProcessed = result.Stats.RowsProcessed
		s.LeafCount = result.Stats.LeafCount
		s.Skipped = result.Stats.Skipped
		s.Blank = result.Stats.Blank
		s.Duration = result.Stats.Duration
	}
	if err != nil {
		s.Output = ""
		s.ErrorKind = types.Kind(err)
		s.Error = err.Error()
	}
	return s
}

// Succeeded reports whether the conversion produced output.
func (s Summary) Succeeded() bool {
	return s.Error == ""
}

// WriteSummary writes s as aligned plain text.
func WriteSummary(w io.Writer, s Summary) error {
	bw := bufio.NewWriter(w)

	line := func(label string, value any) {
		fmt.Fprintf(bw, "  %-20s %v\n", label+":", value)
	}

	line("Input", s.Input)
	if s.Output != "" {
		line("Output", s.Output)
	}
	line("Rows processed", s.RowsProcessed)
	line("Leaf categories", s.LeafCount)
	line("Skipped (non-leaf)", s.Skipped)
	if s.Blank > 0 {
		line("Blank rows", s.Blank)
	}
	line("Duration", s.Duration.Round(time.Microsecond))
	if !s.Succeeded() {
		line("Error", fmt.Sprintf("[%s] %s", s.ErrorKind, s.Error))
	}

	return bw.Flush()
}
