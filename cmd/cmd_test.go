package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/category-launch-generator/internal/types"
)

const testConfig = `
output:
  path: ./out/models.kt
  header_comments: false
condition_mapping:
  "New with tags": 100
  "New without tags": 1
  "Very good": 2
  "Good": 3
  "Satisfactory": 4
  "Not fully functional": 5
package_size_mapping:
  "All shippable": [1, 2, 3]
field_visibility_mapping:
  Brand: VintedUploadItemFieldTypes.BRAND_VISIBLE
  Colour: VintedUploadItemFieldTypes.COLOR_VISIBLE
logging:
  level: warn
`

const testTable = `Leaf;ID;Level;Brand;Colour;Package size;New with tags;New without tags;Very good;Good;Satisfactory;Not fully functional
FALSE;10;1;FALSE;FALSE;All shippable;FALSE;FALSE;FALSE;FALSE;FALSE;FALSE
TRUE;5429;3;TRUE;FALSE;All shippable;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE
`

// writeFixtures writes the configuration and a table into a temp dir.
func writeFixtures(t *testing.T, table string) (dir, cfgPath, tablePath string) {
	t.Helper()

	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "config.yaml")
	tablePath = filepath.Join(dir, "categories.csv")

	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(tablePath, []byte(table), 0o644))
	return dir, cfgPath, tablePath
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	inputPath, outputPath = "", ""
	toStdout, dryRun, showProgress, verbose = false, false, false, false
	validateInput, validateLogFile = "", ""
	validateStopFirst, validateStrict = false, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerate_Stdout(t *testing.T) {
	_, cfgPath, tablePath := writeFixtures(t, testTable)

	stdout, stderr, err := execute(t, "generate", "--config", cfgPath, "--input", tablePath, "--stdout")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "val leafCategory5429 = CategoryLaunchDataProviderModel(\n"))
	assert.Contains(t, stdout, "    leafCategory5429,\n")
	assert.NotContains(t, stdout, "leafCategory10")

	assert.Contains(t, stderr, "Conversion complete")
	assert.Contains(t, stderr, "(stdout)")
}

func TestGenerate_WritesFile(t *testing.T) {
	dir, cfgPath, tablePath := writeFixtures(t, testTable)
	out := filepath.Join(dir, "generated", "models.kt")

	stdout, _, err := execute(t, "generate", "--config", cfgPath, "--input", tablePath, "--output", out, "--progress")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "expectedPackageSizeIds = setOf(1L, 2L, 3L),")
}

func TestGenerate_DryRun(t *testing.T) {
	dir, cfgPath, tablePath := writeFixtures(t, testTable)
	out := filepath.Join(dir, "models.kt")

	_, stderr, err := execute(t, "generate", "--config", cfgPath, "--input", tablePath, "--output", out, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stderr, "dry run")
	assert.NoFileExists(t, out)
}

func TestGenerate_Failure(t *testing.T) {
	dir, cfgPath, tablePath := writeFixtures(t, testTable+"TRUE;77;3;TRUE;FALSE;Gigantic;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE\n")
	out := filepath.Join(dir, "models.kt")

	_, stderr, err := execute(t, "generate", "--config", cfgPath, "--input", tablePath, "--output", out)
	require.Error(t, err)

	assert.Equal(t, types.KindMapping, types.Kind(err))
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, stderr, "Conversion failed")
	assert.NoFileExists(t, out, "nothing is written on failure")
}

func TestGenerate_MissingConfig(t *testing.T) {
	dir, _, tablePath := writeFixtures(t, testTable)

	_, _, err := execute(t, "generate", "--config", filepath.Join(dir, "missing.yaml"), "--input", tablePath, "--stdout")
	require.Error(t, err)

	assert.Equal(t, types.KindConfig, types.Kind(err))
	assert.Equal(t, 2, exitCode(err))
}

func TestValidate_ConfigOnly(t *testing.T) {
	_, cfgPath, _ := writeFixtures(t, testTable)

	stdout, _, err := execute(t, "validate", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Configuration OK")
	assert.Contains(t, stdout, "Condition types:")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	dir, cfgPath, tablePath := writeFixtures(t, testTable+
		"TRUE;abc;3;TRUE;FALSE;All shippable;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE\n"+
		"TRUE;78;3;TRUE;FALSE;Gigantic;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE\n")
	logFile := filepath.Join(dir, "issues.log")

	stdout, _, err := execute(t, "validate", "--config", cfgPath, "--input", tablePath, "--log-file", logFile)
	require.ErrorIs(t, err, errValidationFailed)

	assert.Contains(t, stdout, "Validation completed with 2 issue(s):")
	assert.Contains(t, stdout, "row 3:")
	assert.Contains(t, stdout, "row 4:")
	assert.FileExists(t, logFile)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Category Launch Generator")
	assert.Contains(t, stdout, "Version:")
}
