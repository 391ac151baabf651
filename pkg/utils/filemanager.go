// =============================================================================
// Category Launch Generator - File Manager Utility
// =============================================================================
//
// This module provides the file handling shared by the CLI and the upload
// service:
//   - Atomic output writes (no half-written Kotlin files)
//   - Per-conversion workspaces for uploaded files
//   - Retention cleanup of old workspaces
//
// WORKSPACE LAYOUT:
//   <work dir>/<uuid>/input.<ext>    the uploaded table
//   <work dir>/<uuid>/output.kt      the generated source
//   <work dir>/<uuid>/summary.json   the processing summary
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrWorkspaceNotFound is returned by Lookup for unknown or malformed ids.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// Workspace file names.
const (
	inputBaseName   = "input"
	outputFileName  = "output.kt"
	summaryFileName = "summary.json"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager owns the workspace directory of the upload service.
type FileManager struct {
	// WorkDir holds one subdirectory per conversion.
	WorkDir string
}

// NewFileManager creates a new FileManager rooted at workDir.
func NewFileManager(workDir string) *FileManager {
	return &FileManager{WorkDir: workDir}
}

// EnsureDirectories creates the work directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.WorkDir, err)
	}
	return nil
}

// =============================================================================
// WORKSPACES
// =============================================================================

// Workspace is the directory of one conversion.
type Workspace struct {
	ID  uuid.UUID
	Dir string
}

// NewWorkspace creates an empty workspace with a fresh id.
func (fm *FileManager) NewWorkspace() (*Workspace, error) {
	id := uuid.New()
	dir := filepath.Join(fm.WorkDir, id.String())

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// Lookup returns the existing workspace for id.
//
// RETURNS:
//   - The workspace.
//   - ErrWorkspaceNotFound if id is not a UUID or has no directory.
func (fm *FileManager) Lookup(id string) (*Workspace, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrWorkspaceNotFound
	}

	dir := filepath.Join(fm.WorkDir, parsed.String())
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, ErrWorkspaceNotFound
	}
	return &Workspace{ID: parsed, Dir: dir}, nil
}

// InputPath returns where an upload named name is stored. Only the
// extension of name is kept.
func (ws *Workspace) InputPath(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	switch ext {
	case ".csv", ".txt", ".xlsx", ".xlsm":
	default:
		ext = ".csv"
	}
	return filepath.Join(ws.Dir, inputBaseName+ext)
}

// OutputPath returns where the generated source is stored.
func (ws *Workspace) OutputPath() string {
	return filepath.Join(ws.Dir, outputFileName)
}

// SummaryPath returns where the processing summary is stored.
func (ws *Workspace) SummaryPath() string {
	return filepath.Join(ws.Dir, summaryFileName)
}

// HasOutput reports whether a conversion output exists.
func (ws *Workspace) HasOutput() bool {
	return FileExists(ws.OutputPath())
}

// CleanOldWorkspaces removes workspaces older than maxAge.
//
// PARAMETERS:
//   - maxAge: The maximum age of workspaces to keep.
//
// RETURNS:
//   - The number of workspaces removed.
//   - An error if cleaning fails.
func (fm *FileManager) CleanOldWorkspaces(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	entries, err := os.ReadDir(fm.WorkDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to clean workspaces: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(fm.WorkDir, entry.Name())); err != nil {
				return removed, fmt.Errorf("failed to clean workspaces: %w", err)
			}
			removed++
		}
	}

	return removed, nil
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// WriteOutput writes data to path through a temporary file in the same
// directory, so readers never see a partial file. Parent directories are
// created as needed.
func WriteOutput(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// DownloadName derives the file name offered for a generated file from
// the uploaded file name: "categories.csv" becomes "categories.kt".
func DownloadName(uploadName string) string {
	base := filepath.Base(uploadName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "leaf_category_models"
	}
	return base + ".kt"
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
