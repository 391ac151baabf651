package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/category-launch-generator/internal/config"
	"github.com/ginjaninja78/category-launch-generator/internal/validation"
)

var (
	validateInput     string
	validateStopFirst bool
	validateStrict    bool
	validateLogFile   string
)

// errValidationFailed is returned when the report holds errors. The
// issues themselves have already been printed.
var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and, optionally, a category table",
	Long: `The validate command loads the configuration document and reports
problems with it. With --input it also checks every row of the table and
reports all malformed rows and unmapped values at once. Nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout())
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Category table to check")
	validateCmd.Flags().BoolVar(&validateStopFirst, "stop-on-first-error", false, "Stop at the first error like generate does")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().StringVar(&validateLogFile, "log-file", "", "Also write the issues to this file")
}

func runValidate(w io.Writer) error {
	cfg, err := loadMappingConfig()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, successStyle.Render("Configuration OK"))
	describeConfig(w, cfg)

	if validateInput == "" {
		return nil
	}

	opts := validation.DefaultOptions()
	opts.StopOnFirstError = validateStopFirst
	opts.TreatWarningsAsErrors = validateStrict

	report, err := validation.NewValidatorWithOptions(cfg, opts).ValidateFile(validateInput)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-20s %d\n", "Rows checked:", report.RowsChecked)
	fmt.Fprintf(w, "  %-20s %d\n", "Leaf categories:", report.LeafCount)
	fmt.Fprintf(w, "  %-20s %d\n", "Skipped (non-leaf):", report.Skipped)
	fmt.Fprintln(w)
	fmt.Fprintln(w, validation.FormatIssues(report.Issues))

	if validateLogFile != "" {
		if err := validation.WriteIssueLog(report.Issues, validateLogFile); err != nil {
			return err
		}
		slog.Info("wrote issue log", "path", validateLogFile)
	}

	if !report.IsValid {
		fmt.Fprintln(w, failureStyle.Render(fmt.Sprintf("%s is not valid", validateInput)))
		return errValidationFailed
	}
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("%s is valid", validateInput)))
	return nil
}

// describeConfig prints the loaded mapping tables.
func describeConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "  %-20s %s\n", "File:", cfg.SourcePath)
	fmt.Fprintf(w, "  %-20s %d\n", "Condition types:", len(cfg.Tables.ConditionNames()))
	fmt.Fprintf(w, "  %-20s %d\n", "Package sizes:", len(cfg.Tables.PackageSizeLabels()))
	fmt.Fprintf(w, "  %-20s %d\n", "Visible fields:", len(cfg.Tables.FieldVisibility())+len(cfg.Tables.AlwaysVisible()))
	fmt.Fprintf(w, "  %-20s %s\n", "Output:", cfg.Output.Path)
}
