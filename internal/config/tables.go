package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ginjaninja78/category-launch-generator/internal/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAPPING TABLES
// =============================================================================

// FieldVisibility maps one visibility column to its target identifier.
type FieldVisibility struct {
	Column     string
	Identifier string
}

// MappingTables holds the lookup tables used by the mapper and generator.
// There is no mutation API; accessors hand out copies.
type MappingTables struct {
	conditions    map[string]int64
	packageSizes  map[string][]int64
	fields        []FieldVisibility
	alwaysVisible []string
}

// NewMappingTables validates and copies the given tables.
//
// Condition names must be condition columns and field columns must be
// visibility columns. Package-size id lists are de-duplicated and sorted.
func NewMappingTables(conditions map[string]int64, packageSizes map[string][]int64, fields []FieldVisibility, alwaysVisible []string) (*MappingTables, error) {
	t := &MappingTables{
		conditions:   make(map[string]int64, len(conditions)),
		packageSizes: make(map[string][]int64, len(packageSizes)),
	}

	for name, id := range conditions {
		key := "condition_mapping." + name
		if !types.IsConditionColumn(name) {
			return nil, &types.ConfigError{Key: key, Reason: fmt.Sprintf("unknown condition column (expected one of %s)", strings.Join(types.ConditionColumns, ", "))}
		}
		if id < 0 {
			return nil, &types.ConfigError{Key: key, Reason: "condition type id must not be negative"}
		}
		t.conditions[name] = id
	}

	for label, ids := range packageSizes {
		key := "package_size_mapping." + label
		if strings.TrimSpace(label) == "" {
			return nil, &types.ConfigError{Key: "package_size_mapping", Reason: "package size label must not be empty"}
		}
		if len(ids) == 0 {
			return nil, &types.ConfigError{Key: key, Reason: "at least one package size id is required"}
		}
		for _, id := range ids {
			if id < 0 {
				return nil, &types.ConfigError{Key: key, Reason: "package size id must not be negative"}
			}
		}
		t.packageSizes[label] = SortedUnique(ids)
	}

	if len(fields) == 0 {
		return nil, &types.ConfigError{Key: "field_visibility_mapping", Reason: "at least one field is required"}
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		key := "field_visibility_mapping." + f.Column
		if !types.IsVisibilityColumn(f.Column) {
			return nil, &types.ConfigError{Key: key, Reason: fmt.Sprintf("unknown field column (expected one of %s)", strings.Join(types.VisibilityColumns, ", "))}
		}
		if seen[f.Column] {
			return nil, &types.ConfigError{Key: key, Reason: "field listed more than once"}
		}
		if !qualifiedNamePattern.MatchString(f.Identifier) {
			return nil, &types.ConfigError{Key: key, Reason: fmt.Sprintf("%q is not a valid identifier", f.Identifier)}
		}
		seen[f.Column] = true
		t.fields = append(t.fields, f)
	}

	for i, id := range alwaysVisible {
		if !qualifiedNamePattern.MatchString(id) {
			return nil, &types.ConfigError{Key: fmt.Sprintf("always_visible_fields[%d]", i), Reason: fmt.Sprintf("%q is not a valid identifier", id)}
		}
	}
	t.alwaysVisible = slices.Clone(alwaysVisible)

	return t, nil
}

// ConditionID returns the condition type id for a condition column.
func (t *MappingTables) ConditionID(name string) (int64, bool) {
	id, ok := t.conditions[name]
	return id, ok
}

// PackageSizeIDs returns the sorted ids a package-size label expands to.
func (t *MappingTables) PackageSizeIDs(label string) ([]int64, bool) {
	ids, ok := t.packageSizes[label]
	if !ok {
		return nil, false
	}
	return slices.Clone(ids), true
}

// FieldVisibility returns the visibility fields in configured order.
func (t *MappingTables) FieldVisibility() []FieldVisibility {
	return slices.Clone(t.fields)
}

// AlwaysVisible returns identifiers appended to every visibility list.
func (t *MappingTables) AlwaysVisible() []string {
	return slices.Clone(t.alwaysVisible)
}

// ConditionNames returns the mapped condition columns in header order.
func (t *MappingTables) ConditionNames() []string {
	var names []string
	for _, name := range types.ConditionColumns {
		if _, ok := t.conditions[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// PackageSizeLabels returns the mapped labels in lexical order.
func (t *MappingTables) PackageSizeLabels() []string {
	labels := make([]string, 0, len(t.packageSizes))
	for label := range t.packageSizes {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

// SortedUnique returns a sorted copy of ids without duplicates.
func SortedUnique(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// =============================================================================
// NODE DECODING
// =============================================================================

// requireMapping checks that a required section is present and is a mapping.
func requireMapping(node *yaml.Node, section string) error {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return &types.ConfigError{Key: section, Reason: "required section is missing"}
	}
	if node.Kind != yaml.MappingNode {
		return &types.ConfigError{Key: section, Reason: "section must be a mapping"}
	}
	return nil
}

// mappingPairs walks the key/value pairs of a mapping node in document order.
func mappingPairs(node *yaml.Node, section string, fn func(key string, value *yaml.Node) error) error {
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return &types.ConfigError{Key: section, Reason: fmt.Sprintf("line %d: keys must be plain strings", keyNode.Line)}
		}
		if seen[keyNode.Value] {
			return &types.ConfigError{Key: section + "." + keyNode.Value, Reason: "duplicate key"}
		}
		seen[keyNode.Value] = true
		if err := fn(keyNode.Value, valueNode); err != nil {
			return err
		}
	}
	return nil
}

// parseID parses a scalar node as an integer id.
func parseID(node *yaml.Node, key string) (int64, error) {
	if node.Kind != yaml.ScalarNode {
		return 0, &types.ConfigError{Key: key, Reason: fmt.Sprintf("line %d: id must be a number", node.Line)}
	}
	id, err := strconv.ParseInt(strings.TrimSpace(node.Value), 10, 64)
	if err != nil {
		return 0, &types.ConfigError{Key: key, Reason: fmt.Sprintf("line %d: id %q is not numeric", node.Line, node.Value)}
	}
	return id, nil
}

func decodeConditionMapping(node *yaml.Node) (map[string]int64, error) {
	const section = "condition_mapping"
	if err := requireMapping(node, section); err != nil {
		return nil, err
	}

	conditions := make(map[string]int64)
	err := mappingPairs(node, section, func(name string, value *yaml.Node) error {
		id, err := parseID(value, section+"."+name)
		if err != nil {
			return err
		}
		conditions[name] = id
		return nil
	})
	return conditions, err
}

func decodePackageSizeMapping(node *yaml.Node) (map[string][]int64, error) {
	const section = "package_size_mapping"
	if err := requireMapping(node, section); err != nil {
		return nil, err
	}

	sizes := make(map[string][]int64)
	err := mappingPairs(node, section, func(label string, value *yaml.Node) error {
		key := section + "." + label
		if value.Kind != yaml.SequenceNode {
			return &types.ConfigError{Key: key, Reason: fmt.Sprintf("line %d: expected a list of package size ids", value.Line)}
		}
		ids := make([]int64, 0, len(value.Content))
		for _, item := range value.Content {
			id, err := parseID(item, key)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		sizes[label] = ids
		return nil
	})
	return sizes, err
}

func decodeFieldVisibilityMapping(node *yaml.Node) ([]FieldVisibility, error) {
	const section = "field_visibility_mapping"
	if err := requireMapping(node, section); err != nil {
		return nil, err
	}

	var fields []FieldVisibility
	err := mappingPairs(node, section, func(column string, value *yaml.Node) error {
		if value.Kind != yaml.ScalarNode || strings.TrimSpace(value.Value) == "" {
			return &types.ConfigError{Key: section + "." + column, Reason: fmt.Sprintf("line %d: expected an identifier", value.Line)}
		}
		fields = append(fields, FieldVisibility{Column: column, Identifier: strings.TrimSpace(value.Value)})
		return nil
	})
	return fields, err
}
