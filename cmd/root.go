// =============================================================================
// Category Launch Generator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (catgen)
//   ├── generateCmd (catgen generate)
//   ├── validateCmd (catgen validate)
//   ├── serveCmd    (catgen serve)
//   └── versionCmd  (catgen version)
//
// CONFIGURATION:
//   One YAML file holds both the mapping tables (read by internal/config)
//   and the process settings (read here through Viper):
//     logging.level, logging.format
//     server.addr, server.work_dir, server.retention, server.max_upload_mb
//   Every process setting can be overridden with a CATGEN_ environment
//   variable, e.g. CATGEN_LOGGING_LEVEL=debug.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/category-launch-generator/internal/config"
	"github.com/ginjaninja78/category-launch-generator/internal/logging"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// defaultConfigFile is used when --config is not given.
const defaultConfigFile = "config.yaml"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "catgen",
	Short: "Category Launch Generator - Turn a category table into Kotlin test fixtures",
	Long: `Category Launch Generator reads the category taxonomy table (one row per
category, semicolon separated) and generates one CategoryLaunchDataProviderModel
literal for every leaf category, ready to paste into the launch test suite.

Example Usage:
  catgen generate --input categories.csv        # Write the configured output file
  catgen generate --input categories.csv --stdout
  catgen validate --input categories.csv        # Report every problem at once
  catgen serve --addr :8080                     # Run the upload service`,

	PersistentPreRunE: initConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: 2 for problems with
// the configuration, 1 for everything else.
func exitCode(err error) int {
	if types.Kind(err) == types.KindConfig {
		return 2
	}
	return 1
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", defaultConfigFile, "Path to the configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")

	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the process settings and sets up logging. The mapping
// tables are loaded later by the commands that need them.
func initConfig(cmd *cobra.Command, _ []string) error {
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("CATGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return &types.ConfigError{Reason: "cannot read process settings from " + cfgFile, Err: err}
		}
	}

	level := viper.GetString("logging.level")
	if verbose {
		level = "debug"
	}

	if _, err := logging.Setup(level, viper.GetString("logging.format"), cmd.ErrOrStderr()); err != nil {
		return &types.ConfigError{Key: "logging", Reason: err.Error()}
	}
	return nil
}

// loadMappingConfig loads the configuration document named by --config.
func loadMappingConfig() (*config.Config, error) {
	path := viper.ConfigFileUsed()
	if path == "" {
		path = cfgFile
	}
	return config.Load(path)
}
