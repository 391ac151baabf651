// =============================================================================
// Category Launch Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - config     (column vocabulary for validating mapping tables)
//   - csvparser  (CategoryRecord production)
//   - converter  (mapping CategoryRecord -> GeneratedModel)
//   - kotlinwriter (rendering GeneratedModel)
//
// =============================================================================

package types

// =============================================================================
// COLUMN VOCABULARY
// =============================================================================

// Recognized CSV header names. Header matching is exact after trimming.
const (
	ColumnLeaf        = "Leaf"
	ColumnID          = "ID"
	ColumnLevel       = "Level"
	ColumnBrand       = "Brand"
	ColumnColour      = "Colour"
	ColumnPackageSize = "Package size"

	ConditionNewWithTags        = "New with tags"
	ConditionNewWithoutTags     = "New without tags"
	ConditionVeryGood           = "Very good"
	ConditionGood               = "Good"
	ConditionSatisfactory       = "Satisfactory"
	ConditionNotFullyFunctional = "Not fully functional"
)

// VisibilityColumns are the boolean columns that may drive field visibility.
var VisibilityColumns = []string{ColumnBrand, ColumnColour}

// ConditionColumns lists the condition columns in header order.
// Condition ids are resolved in this order before being sorted.
var ConditionColumns = []string{
	ConditionNewWithTags,
	ConditionNewWithoutTags,
	ConditionVeryGood,
	ConditionGood,
	ConditionSatisfactory,
	ConditionNotFullyFunctional,
}

// RequiredColumns returns every column the header must contain, in
// canonical order.
func RequiredColumns() []string {
	cols := []string{ColumnLeaf, ColumnID, ColumnLevel}
	cols = append(cols, VisibilityColumns...)
	cols = append(cols, ColumnPackageSize)
	cols = append(cols, ConditionColumns...)
	return cols
}

// IsVisibilityColumn reports whether name is a field-visibility column.
func IsVisibilityColumn(name string) bool {
	return contains(VisibilityColumns, name)
}

// IsConditionColumn reports whether name is a condition column.
func IsConditionColumn(name string) bool {
	return contains(ConditionColumns, name)
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

// =============================================================================
// CATEGORY RECORD
// =============================================================================

// CategoryRecord is one parsed and validated CSV row.
type CategoryRecord struct {
	// RowNumber is the 1-based data row number (header excluded).
	RowNumber int

	// CategoryID is the category identifier, unique within one input.
	CategoryID int64

	// CategoryLevel is the hierarchy depth (root = 1).
	CategoryLevel int64

	// IsLeaf marks categories without children. Only leaves are generated.
	IsLeaf bool

	// VisibleFields holds one flag per visibility column, keyed by column name.
	VisibleFields map[string]bool

	// PackageSizeLabel is the raw package-size label before mapping.
	PackageSizeLabel string

	// ConditionAvailability holds one flag per condition column.
	ConditionAvailability map[string]bool
}

// =============================================================================
// GENERATED MODEL
// =============================================================================

// GeneratedModel is the mapped form of one leaf category, ready to render.
type GeneratedModel struct {
	CategoryID    int64
	CategoryLevel int64

	// FieldsVisibility is ordered by the configured field order.
	FieldsVisibility []string

	// ConditionTypeIDs and PackageSizeIDs are sorted ascending, no duplicates.
	ConditionTypeIDs []int64
	PackageSizeIDs   []int64

	// SizeGroupIDs is always empty: size groups are not assigned yet.
	SizeGroupIDs []int64
}
