// =============================================================================
// Category Launch Generator - Configuration Module
// =============================================================================
//
// This module loads the configuration document that parameterizes the
// conversion: CSV reading settings, output naming, and the mapping tables
// that translate CSV values into target identifiers.
//
// CONFIGURATION DOCUMENT (YAML):
//   csv:                      reading settings (delimiter, encoding, ...)
//   output:                   output path and rendering settings
//   condition_mapping:        condition column -> condition type id
//   package_size_mapping:     package size label -> list of package size ids
//   field_visibility_mapping: visibility column -> identifier, in emit order
//   always_visible_fields:    identifiers appended to every visibility list
//
// The loaded Config is read-only. It is safe to share between concurrent
// conversions.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/ginjaninja78/category-launch-generator/internal/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds everything one conversion needs besides the input itself.
type Config struct {
	// CSV contains the settings for reading the input table.
	CSV CSVSettings `yaml:"csv"`

	// Output contains the output path and rendering settings.
	Output OutputSettings `yaml:"output"`

	// Tables holds the mapping tables. Built once at load time.
	Tables *MappingTables `yaml:"-"`

	// SourcePath is the file the configuration was loaded from, if any.
	SourcePath string `yaml:"-"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for reading the input table.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Aliases: "semicolon", "comma", "tab", "pipe".
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the input file.
	// Any IANA name known to golang.org/x/text is accepted.
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// AllowExtraColumns accepts header columns outside the recognized set
	// and ignores them. When false such columns fail the header check.
	AllowExtraColumns bool `yaml:"allow_extra_columns"`

	// Sheet is the worksheet read from XLSX input. Empty means the first sheet.
	Sheet string `yaml:"sheet"`
}

// =============================================================================
// OUTPUT SETTINGS STRUCTURE
// =============================================================================

// OutputSettings controls where and how the generated Kotlin is written.
type OutputSettings struct {
	// Path is the destination file for the generated source.
	// Default: "./output/leaf_category_models.kt"
	Path string `yaml:"path"`

	// Package is an optional Kotlin package declaration.
	Package string `yaml:"package"`

	// ObjectName wraps all declarations in `object <ObjectName> { ... }`
	// when set.
	ObjectName string `yaml:"object_name"`

	// ModelType is the constructor used for each block.
	// Default: "CategoryLaunchDataProviderModel"
	ModelType string `yaml:"model_type"`

	// ValuePrefix names each block: <ValuePrefix><categoryId>.
	// Default: "leafCategory"
	ValuePrefix string `yaml:"value_prefix"`

	// CollectionName names the aggregate list of all blocks.
	// Default: "leafCategoryModels"
	CollectionName string `yaml:"collection_name"`

	// LongSuffix is appended to every numeric literal. "L" or "".
	// Default: "L"
	LongSuffix *string `yaml:"long_suffix"`

	// BrandIDHelper is the function called with the category id to
	// produce the brandId expression.
	// Default: "supplyTestsHelper.getDefaultBrandId"
	BrandIDHelper string `yaml:"brand_id_helper"`

	// HeaderComments emits the leaf count and mapping tables as comments.
	// Default: true
	HeaderComments *bool `yaml:"header_comments"`
}

// Suffix returns the configured long-literal suffix.
func (o OutputSettings) Suffix() string {
	if o.LongSuffix == nil {
		return DefaultLongSuffix
	}
	return *o.LongSuffix
}

// EmitHeaderComments reports whether header comments are enabled.
func (o OutputSettings) EmitHeaderComments() bool {
	return o.HeaderComments == nil || *o.HeaderComments
}

// Default values.
const (
	DefaultDelimiter      = ";"
	DefaultEncoding       = "UTF-8"
	DefaultOutputPath     = "./output/leaf_category_models.kt"
	DefaultModelType      = "CategoryLaunchDataProviderModel"
	DefaultValuePrefix    = "leafCategory"
	DefaultCollectionName = "leafCategoryModels"
	DefaultLongSuffix     = "L"
	DefaultBrandIDHelper  = "supplyTestsHelper.getDefaultBrandId"
)

// =============================================================================
// RAW DOCUMENT
// =============================================================================

// document mirrors the YAML layout. The mapping sections stay as nodes so
// that entry order survives and every entry can be checked individually.
type document struct {
	CSV                    CSVSettings    `yaml:"csv"`
	Output                 OutputSettings `yaml:"output"`
	ConditionMapping       yaml.Node      `yaml:"condition_mapping"`
	PackageSizeMapping     yaml.Node      `yaml:"package_size_mapping"`
	FieldVisibilityMapping yaml.Node      `yaml:"field_visibility_mapping"`
	AlwaysVisibleFields    []string       `yaml:"always_visible_fields"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads and validates the configuration document at path.
//
// RETURNS:
//   - The immutable Config.
//   - A *types.ConfigError if the file is unreadable, unparsable or invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ConfigError{Reason: "cannot read configuration file " + path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.SourcePath = path

	return cfg, nil
}

// Parse builds a Config from an in-memory YAML document.
func Parse(data []byte) (*Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &types.ConfigError{Reason: "cannot parse YAML", Err: err}
	}

	cfg := &Config{
		CSV:    doc.CSV,
		Output: doc.Output,
	}
	applyDefaults(cfg)

	if err := validateSettings(cfg); err != nil {
		return nil, err
	}

	conditions, err := decodeConditionMapping(&doc.ConditionMapping)
	if err != nil {
		return nil, err
	}
	packageSizes, err := decodePackageSizeMapping(&doc.PackageSizeMapping)
	if err != nil {
		return nil, err
	}
	fields, err := decodeFieldVisibilityMapping(&doc.FieldVisibilityMapping)
	if err != nil {
		return nil, err
	}

	tables, err := NewMappingTables(conditions, packageSizes, fields, doc.AlwaysVisibleFields)
	if err != nil {
		return nil, err
	}
	cfg.Tables = tables

	return cfg, nil
}

// applyDefaults sets default values for any unset option.
func applyDefaults(cfg *Config) {
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = DefaultDelimiter
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = DefaultEncoding
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Output.ModelType == "" {
		cfg.Output.ModelType = DefaultModelType
	}
	if cfg.Output.ValuePrefix == "" {
		cfg.Output.ValuePrefix = DefaultValuePrefix
	}
	if cfg.Output.CollectionName == "" {
		cfg.Output.CollectionName = DefaultCollectionName
	}
	if cfg.Output.BrandIDHelper == "" {
		cfg.Output.BrandIDHelper = DefaultBrandIDHelper
	}
}

var (
	identifierPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	qualifiedNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// validateSettings checks the csv and output sections.
func validateSettings(cfg *Config) error {
	if _, err := cfg.CSV.Comma(); err != nil {
		return &types.ConfigError{Key: "csv.delimiter", Reason: err.Error()}
	}
	if _, err := LookupEncoding(cfg.CSV.Encoding); err != nil {
		return &types.ConfigError{Key: "csv.encoding", Reason: err.Error()}
	}

	identifiers := [][2]string{
		{"output.value_prefix", cfg.Output.ValuePrefix},
		{"output.collection_name", cfg.Output.CollectionName},
	}
	if cfg.Output.ObjectName != "" {
		identifiers = append(identifiers, [2]string{"output.object_name", cfg.Output.ObjectName})
	}
	for _, id := range identifiers {
		if !identifierPattern.MatchString(id[1]) {
			return &types.ConfigError{Key: id[0], Reason: fmt.Sprintf("%q is not a valid Kotlin identifier", id[1])}
		}
	}

	qualified := [][2]string{
		{"output.model_type", cfg.Output.ModelType},
		{"output.brand_id_helper", cfg.Output.BrandIDHelper},
	}
	if cfg.Output.Package != "" {
		qualified = append(qualified, [2]string{"output.package", cfg.Output.Package})
	}
	for _, q := range qualified {
		if !qualifiedNamePattern.MatchString(q[1]) {
			return &types.ConfigError{Key: q[0], Reason: fmt.Sprintf("%q is not a valid qualified name", q[1])}
		}
	}

	switch suffix := cfg.Output.Suffix(); suffix {
	case "", "L":
	default:
		return &types.ConfigError{Key: "output.long_suffix", Reason: fmt.Sprintf("unsupported literal suffix %q (use \"L\" or \"\")", suffix)}
	}

	return nil
}

// Comma resolves the configured delimiter to a single rune.
func (s CSVSettings) Comma() (rune, error) {
	switch s.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	case ";", "semicolon", "SEMICOLON":
		return ';', nil
	case ",", "comma", "COMMA":
		return ',', nil
	}

	runes := []rune(s.Delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
	}
	switch runes[0] {
	case '"', '\r', '\n':
		return 0, fmt.Errorf("delimiter %q is not allowed", s.Delimiter)
	}
	return runes[0], nil
}
