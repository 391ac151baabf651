package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "config", err: &ConfigError{Key: "csv.encoding", Reason: "unknown encoding"}, want: KindConfig},
		{name: "schema", err: &SchemaError{Missing: []string{"ID"}}, want: KindSchema},
		{name: "row format wrapped", err: fmt.Errorf("parse: %w", &RowFormatError{Row: 2, Column: "ID"}), want: KindRowFormat},
		{name: "mapping", err: &MappingError{CategoryID: 1, Table: "package size", Value: "Huge"}, want: KindMapping},
		{name: "empty", err: &EmptyResultError{RowsProcessed: 3}, want: KindEmptyResult},
		{name: "other", err: fmt.Errorf("disk full"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	rowErr := &RowFormatError{Row: 4, Column: "ID", Value: "abc", Reason: "expected a positive integer"}
	assert.Equal(t, `row 4, column "ID": expected a positive integer (value: "abc")`, rowErr.Error())

	mapErr := &MappingError{CategoryID: 5429, Table: "package size", Value: "Huge"}
	assert.Equal(t, `category 5429: no package size mapping for "Huge"`, mapErr.Error())

	schemaErr := &SchemaError{Missing: []string{"Leaf", "Level"}, Unrecognized: []string{"Path"}}
	assert.Equal(t, `schema error: missing required columns: "Leaf", "Level"; unrecognized columns: "Path"`, schemaErr.Error())

	cfgErr := &ConfigError{Key: "condition_mapping.Good", Reason: "id must be an integer", Err: fmt.Errorf("bad")}
	assert.Equal(t, `config error at "condition_mapping.Good": id must be an integer: bad`, cfgErr.Error())
}

func TestRequiredColumns(t *testing.T) {
	cols := RequiredColumns()
	assert.Len(t, cols, 12)
	assert.Equal(t, ColumnLeaf, cols[0])
	assert.Equal(t, ConditionNotFullyFunctional, cols[len(cols)-1])
	assert.True(t, IsVisibilityColumn("Brand"))
	assert.False(t, IsVisibilityColumn("Leaf"))
	assert.True(t, IsConditionColumn("Very good"))
	assert.False(t, IsConditionColumn("very good"))
}
