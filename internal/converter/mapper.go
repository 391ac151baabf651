// =============================================================================
// Category Launch Generator - Mapper
// =============================================================================
//
// The mapper turns one validated leaf CategoryRecord into a GeneratedModel
// by looking every CSV value up in the mapping tables:
//
//   - Visibility columns set to TRUE become identifiers, in configured
//     order, followed by the always-visible identifiers.
//   - Condition columns set to TRUE become condition type ids.
//   - The package size label expands to its list of package size ids.
//
// Id sets come out sorted ascending without duplicates. A value with no
// mapping is a MappingError; nothing is ever guessed.
//
// =============================================================================

package converter

import (
	"fmt"

	"github.com/ginjaninja78/category-launch-generator/internal/config"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
)

// Mapping table names used in MappingError.
const (
	TableCondition   = "condition"
	TablePackageSize = "package size"
)

// Mapper applies the mapping tables. It holds no state besides the shared
// tables and is safe for concurrent use.
type Mapper struct {
	tables *config.MappingTables
}

// NewMapper creates a Mapper over the given tables.
func NewMapper(tables *config.MappingTables) *Mapper {
	return &Mapper{tables: tables}
}

// Map converts a leaf record into a GeneratedModel.
//
// RETURNS:
//   - The mapped model.
//   - A *types.MappingError for an unmapped condition or package size.
//   - A *types.ConfigError if a configured field has no column in the record.
func (m *Mapper) Map(rec types.CategoryRecord) (types.GeneratedModel, error) {
	model := types.GeneratedModel{
		CategoryID:    rec.CategoryID,
		CategoryLevel: rec.CategoryLevel,
		SizeGroupIDs:  []int64{},
	}

	fields, err := m.visibleFields(rec)
	if err != nil {
		return types.GeneratedModel{}, err
	}
	model.FieldsVisibility = fields

	conditions, err := m.conditionIDs(rec)
	if err != nil {
		return types.GeneratedModel{}, err
	}
	model.ConditionTypeIDs = conditions

	sizes, ok := m.tables.PackageSizeIDs(rec.PackageSizeLabel)
	if !ok {
		return types.GeneratedModel{}, &types.MappingError{
			CategoryID: rec.CategoryID,
			Table:      TablePackageSize,
			Value:      rec.PackageSizeLabel,
		}
	}
	model.PackageSizeIDs = sizes

	return model, nil
}

func (m *Mapper) visibleFields(rec types.CategoryRecord) ([]string, error) {
	fields := []string{}
	for _, f := range m.tables.FieldVisibility() {
		visible, ok := rec.VisibleFields[f.Column]
		if !ok {
			return nil, &types.ConfigError{
				Key:    "field_visibility_mapping." + f.Column,
				Reason: fmt.Sprintf("column is not present in row %d", rec.RowNumber),
			}
		}
		if visible {
			fields = append(fields, f.Identifier)
		}
	}
	return append(fields, m.tables.AlwaysVisible()...), nil
}

// conditionIDs resolves TRUE condition columns in header order.
func (m *Mapper) conditionIDs(rec types.CategoryRecord) ([]int64, error) {
	var ids []int64
	for _, name := range types.ConditionColumns {
		if !rec.ConditionAvailability[name] {
			continue
		}
		id, ok := m.tables.ConditionID(name)
		if !ok {
			return nil, &types.MappingError{
				CategoryID: rec.CategoryID,
				Table:      TableCondition,
				Value:      name,
			}
		}
		ids = append(ids, id)
	}
	return config.SortedUnique(ids), nil
}
