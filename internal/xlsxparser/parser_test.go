package xlsxparser

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	return f
}

func readAll(t *testing.T, src *SheetSource) [][]string {
	t.Helper()

	var rows [][]string
	for {
		row, err := src.Read()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestNewSheetSource(t *testing.T) {
	f := buildWorkbook(t, "Sheet1", [][]interface{}{
		{"Leaf", "ID", "Level"},
		{true, 5429, 3},
	})
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	src, err := NewSheetSource(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "Sheet1", src.Sheet())
	assert.Equal(t, [][]string{
		{"Leaf", "ID", "Level"},
		{"TRUE", "5429", "3"},
	}, readAll(t, src))
}

func TestOpenSheet_Named(t *testing.T) {
	f := buildWorkbook(t, "Categories", [][]interface{}{
		{"Leaf", "ID"},
		{"FALSE", "12"},
	})
	path := filepath.Join(t.TempDir(), "categories.xlsx")
	require.NoError(t, f.SaveAs(path))

	src, err := OpenSheet(path, "Categories")
	require.NoError(t, err)
	defer src.Close()

	rows := readAll(t, src)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"FALSE", "12"}, rows[1])
}

func TestOpenSheet_MissingSheet(t *testing.T) {
	f := buildWorkbook(t, "Sheet1", [][]interface{}{{"Leaf"}})
	path := filepath.Join(t.TempDir(), "categories.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := OpenSheet(path, "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Nope" not found`)
}

func TestOpenSheet_MissingFile(t *testing.T) {
	_, err := OpenSheet(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("categories.xlsx"))
	assert.True(t, IsWorkbook("CATEGORIES.XLSX"))
	assert.False(t, IsWorkbook("categories.csv"))
	assert.False(t, IsWorkbook("xlsx"))
}
