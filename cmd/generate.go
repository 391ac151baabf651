// =============================================================================
// Category Launch Generator - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which converts one category
// table into the Kotlin fixture file.
//
// COMMAND USAGE:
//   catgen generate --input <file> [flags]
//
// FLAGS:
//   --input     : The category table (.csv, .txt, .xlsx); "-" reads stdin
//   --output    : Destination file, overrides output.path
//   --stdout    : Print the generated source instead of writing a file
//   --dry-run   : Convert and report without writing anything
//   --progress  : Show a row counter on stderr
//
// PROCESSING PIPELINE:
//   1. Load the configuration document
//   2. Convert the table (all-or-nothing)
//   3. Write the output atomically
//   4. Print the summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/category-launch-generator/internal/converter"
	"github.com/ginjaninja78/category-launch-generator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputPath    string
	outputPath   string
	toStdout     bool
	dryRun       bool
	showProgress bool
)

// stdinName selects standard input as the table source.
const stdinName = "-"

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the Kotlin leaf category models from a category table",
	Long: `The generate command reads the category table, keeps the leaf categories
in input order, maps them through the configured tables and writes one
CategoryLaunchDataProviderModel per leaf, followed by the list of all models.

Any malformed row or unmapped value aborts the run and nothing is written.
Use 'catgen validate' to see every problem at once.`,
	Aliases: []string{"process"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

func init() {
	generateCmd.Flags().StringVarP(&inputPath, "input", "i", "", `Category table to convert ("-" for stdin)`)
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: output.path from the configuration)")
	generateCmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the generated source to stdout")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Convert without writing output")
	generateCmd.Flags().BoolVar(&showProgress, "progress", false, "Show progress on stderr")

	_ = generateCmd.MarkFlagRequired("input")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate(cmd *cobra.Command) error {
	if inputPath == stdinName && cmd.InOrStdin() == os.Stdin && stdinIsTerminal() {
		return fmt.Errorf("--input - expects the table on stdin, but stdin is a terminal")
	}

	cfg, err := loadMappingConfig()
	if err != nil {
		return err
	}

	dest := cfg.Output.Path
	if outputPath != "" {
		dest = outputPath
	}
	if toStdout {
		dest = "(stdout)"
	}

	opts := []converter.Option{converter.WithLogger(slog.Default())}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = newRowProgress(cmd.ErrOrStderr())
		opts = append(opts, converter.WithRowObserver(func(row int) {
			if err := bar.Set(row); err != nil {
				slog.Debug("failed to update progress bar", "error", err)
			}
		}))
	}

	slog.Debug("converting", "input", inputPath, "config", cfg.SourcePath)

	result, convErr := convertInput(converter.New(cfg, opts...), cmd.InOrStdin())
	if bar != nil {
		_ = bar.Finish()
	}

	summary := utils.NewSummary(inputPath, dest, result, convErr)
	if convErr != nil {
		printSummary(cmd.ErrOrStderr(), summary, "")
		return convErr
	}

	switch {
	case dryRun:
		summary.Output = ""
		printSummary(cmd.ErrOrStderr(), summary, "dry run, nothing written")
		return nil

	case toStdout:
		if _, err := cmd.OutOrStdout().Write(result.Output); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

	default:
		if err := utils.WriteOutput(dest, result.Output); err != nil {
			return err
		}
		slog.Info("wrote output", "path", dest, "bytes", len(result.Output))
	}

	printSummary(cmd.ErrOrStderr(), summary, "")
	return nil
}

// convertInput converts the table named by --input.
func convertInput(conv *converter.Converter, stdin io.Reader) (*converter.Result, error) {
	if inputPath == stdinName {
		return conv.Convert(stdin)
	}
	return conv.ConvertFile(inputPath)
}

// newRowProgress returns a spinner counting rows; the table length is not
// known before it has been read.
func newRowProgress(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan][bold]Reading rows...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// printSummary writes a styled status line followed by the summary.
func printSummary(w io.Writer, summary utils.Summary, note string) {
	status := successStyle.Render("Conversion complete")
	if !summary.Succeeded() {
		status = failureStyle.Render("Conversion failed")
	}
	if note != "" {
		status += " " + noteStyle.Render("("+note+")")
	}

	fmt.Fprintln(w, status)
	if err := utils.WriteSummary(w, summary); err != nil {
		slog.Warn("failed to write summary", "error", err)
	}
}

// stdinIsTerminal reports whether stdin is an interactive terminal.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
