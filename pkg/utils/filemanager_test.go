package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/category-launch-generator/internal/converter"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
)

func TestWorkspaces(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "work"))
	require.NoError(t, fm.EnsureDirectories())

	ws, err := fm.NewWorkspace()
	require.NoError(t, err)
	assert.DirExists(t, ws.Dir)
	assert.False(t, ws.HasOutput())

	found, err := fm.Lookup(ws.ID.String())
	require.NoError(t, err)
	assert.Equal(t, ws.Dir, found.Dir)

	require.NoError(t, WriteOutput(ws.OutputPath(), []byte("val x = 1\n")))
	assert.True(t, found.HasOutput())
}

func TestLookup_NotFound(t *testing.T) {
	fm := NewFileManager(t.TempDir())

	for _, id := range []string{"", "../etc", "not-a-uuid", uuid.NewString()} {
		_, err := fm.Lookup(id)
		assert.True(t, errors.Is(err, ErrWorkspaceNotFound), id)
	}
}

func TestWorkspace_InputPath(t *testing.T) {
	ws := &Workspace{Dir: "/work/abc"}

	assert.Equal(t, filepath.Join("/work/abc", "input.csv"), ws.InputPath("categories.CSV"))
	assert.Equal(t, filepath.Join("/work/abc", "input.xlsx"), ws.InputPath("../../Categories.xlsx"))
	assert.Equal(t, filepath.Join("/work/abc", "input.csv"), ws.InputPath("payload.exe"))
	assert.Equal(t, filepath.Join("/work/abc", "output.kt"), ws.OutputPath())
}

func TestCleanOldWorkspaces(t *testing.T) {
	fm := NewFileManager(t.TempDir())

	old, err := fm.NewWorkspace()
	require.NoError(t, err)
	fresh, err := fm.NewWorkspace()
	require.NoError(t, err)

	unrelated := filepath.Join(fm.WorkDir, "keep-me")
	require.NoError(t, os.Mkdir(unrelated, 0o755))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old.Dir, past, past))
	require.NoError(t, os.Chtimes(unrelated, past, past))

	removed, err := fm.CleanOldWorkspaces(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoDirExists(t, old.Dir)
	assert.DirExists(t, fresh.Dir)
	assert.DirExists(t, unrelated)
}

func TestCleanOldWorkspaces_MissingDir(t *testing.T) {
	removed, err := NewFileManager(filepath.Join(t.TempDir(), "missing")).CleanOldWorkspaces(time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "models.kt")

	require.NoError(t, WriteOutput(path, []byte("first\n")))
	require.NoError(t, WriteOutput(path, []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "categories.kt", DownloadName("categories.csv"))
	assert.Equal(t, "office.kt", DownloadName("/tmp/office.xlsx"))
	assert.Equal(t, "leaf_category_models.kt", DownloadName(""))
}

func TestSummary(t *testing.T) {
	result := &converter.Result{Stats: converter.Stats{RowsProcessed: 5, LeafCount: 3, Skipped: 2, Duration: 1500 * time.Microsecond}}

	ok := NewSummary("categories.csv", "out.kt", result, nil)
	assert.True(t, ok.Succeeded())

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, ok))
	text := buf.String()
	assert.Contains(t, text, "Input:")
	assert.Contains(t, text, "out.kt")
	assert.Contains(t, text, "Leaf categories:     3")
	assert.NotContains(t, text, "Error")
	assert.NotContains(t, text, "Blank rows")

	failed := NewSummary("categories.csv", "out.kt", result, &types.EmptyResultError{RowsProcessed: 5})
	assert.False(t, failed.Succeeded())
	assert.Equal(t, types.KindEmptyResult, failed.ErrorKind)
	assert.Empty(t, failed.Output)

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, failed))
	assert.Contains(t, buf.String(), "[empty_result] no leaf categories found")

	assert.Zero(t, NewSummary("x.csv", "", nil, nil).RowsProcessed)
}
