package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/ginjaninja78/category-launch-generator/internal/converter"
	"github.com/ginjaninja78/category-launch-generator/internal/logging"
	"github.com/ginjaninja78/category-launch-generator/internal/validation"
	"github.com/ginjaninja78/category-launch-generator/pkg/utils"
)

// uploadField is the multipart field carrying the table.
const uploadField = "csv_file"

// multipartMemory is the part of an upload kept in memory while parsing.
const multipartMemory = 1 << 20

// UploadResponse is returned by a successful conversion.
type UploadResponse struct {
	ID          string        `json:"id"`
	Summary     utils.Summary `json:"summary"`
	DownloadURL string        `json:"download_url"`
	PreviewURL  string        `json:"preview_url"`
}

// PreviewResponse carries the generated source of a workspace.
type PreviewResponse struct {
	ID      string        `json:"id"`
	Summary utils.Summary `json:"summary"`
	Source  string        `json:"source"`
}

// IssueResponse is one validation problem.
type IssueResponse struct {
	Severity   string `json:"severity"`
	Kind       string `json:"kind"`
	Row        int    `json:"row,omitempty"`
	CategoryID int64  `json:"category_id,omitempty"`
	Message    string `json:"message"`
}

// ValidateResponse is the JSON form of a validation report.
type ValidateResponse struct {
	Input        string          `json:"input"`
	Valid        bool            `json:"valid"`
	RowsChecked  int             `json:"rows_checked"`
	LeafCount    int             `json:"leaf_count"`
	Skipped      int             `json:"skipped"`
	ErrorCount   int             `json:"error_count"`
	WarningCount int             `json:"warning_count"`
	Issues       []IssueResponse `json:"issues"`
}

// =============================================================================
// UPLOAD
// =============================================================================

// handleUpload converts an uploaded table into a new workspace.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	ws, uploadName, err := s.receiveUpload(w, r)
	if err != nil {
		return
	}

	conv := converter.New(s.cfg, converter.WithLogger(logger))
	result, convErr := conv.ConvertFile(ws.InputPath(uploadName))

	summary := utils.NewSummary(uploadName, utils.DownloadName(uploadName), result, convErr)
	if convErr != nil {
		s.discard(r, ws)
		respondConversionError(w, r, convErr, summary)
		return
	}

	if err := utils.WriteOutput(ws.OutputPath(), result.Output); err != nil {
		s.discard(r, ws)
		logger.Error("failed to store output", "workspace", ws.ID, "error", err)
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to store output")
		return
	}
	if err := writeSummaryFile(ws, summary); err != nil {
		logger.Warn("failed to store summary", "workspace", ws.ID, "error", err)
	}

	logger.Info("conversion complete",
		"workspace", ws.ID,
		"input", uploadName,
		"leaf_count", summary.LeafCount,
		"rows", summary.RowsProcessed,
	)

	id := ws.ID.String()
	writeJSON(w, http.StatusOK, UploadResponse{
		ID:          id,
		Summary:     summary,
		DownloadURL: "/api/download/" + id,
		PreviewURL:  "/api/preview/" + id,
	})
}

// receiveUpload stores the uploaded file in a new workspace. On failure
// the response has been written and the returned error is non-nil.
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (*utils.Workspace, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.options.MaxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondFormError(w, r, err)
		return nil, "", err
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("missing file field %q", uploadField))
		return nil, "", err
	}
	defer file.Close()

	ws, err := s.files.NewWorkspace()
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create workspace", "error", err)
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to store upload")
		return nil, "", err
	}

	uploadName := filepath.Base(header.Filename)
	if err := saveUpload(file, ws.InputPath(uploadName)); err != nil {
		s.discard(r, ws)
		logging.FromContext(r.Context()).Error("failed to store upload", "error", err)
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to store upload")
		return nil, "", err
	}

	return ws, uploadName, nil
}

func saveUpload(file multipart.File, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// discard removes a workspace that produced no output.
func (s *Server) discard(r *http.Request, ws *utils.Workspace) {
	if err := os.RemoveAll(ws.Dir); err != nil {
		logging.FromContext(r.Context()).Warn("failed to remove workspace", "workspace", ws.ID, "error", err)
	}
}

// =============================================================================
// DOWNLOAD / PREVIEW
// =============================================================================

// handleDownload serves the generated source as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupOutput(w, r)
	if !ok {
		return
	}

	name := filepath.Base(s.cfg.Output.Path)
	if summary, err := readSummaryFile(ws); err == nil && summary.Output != "" {
		name = summary.Output
	}

	w.Header().Set("Content-Type", "text/x-kotlin; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, ws.OutputPath())
}

// handlePreview returns the generated source with its summary.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.lookupOutput(w, r)
	if !ok {
		return
	}

	source, err := os.ReadFile(ws.OutputPath())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to read output", "workspace", ws.ID, "error", err)
		respondError(w, r, http.StatusInternalServerError, codeInternal, "failed to read output")
		return
	}

	summary, err := readSummaryFile(ws)
	if err != nil {
		logging.FromContext(r.Context()).Debug("summary unavailable", "workspace", ws.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, PreviewResponse{
		ID:      ws.ID.String(),
		Summary: summary,
		Source:  string(source),
	})
}

func (s *Server) lookupOutput(w http.ResponseWriter, r *http.Request) (*utils.Workspace, bool) {
	ws, err := s.files.Lookup(chi.URLParam(r, "id"))
	if err != nil || !ws.HasOutput() {
		respondError(w, r, http.StatusNotFound, codeNotFound, utils.ErrWorkspaceNotFound.Error())
		return nil, false
	}
	return ws, true
}

func writeSummaryFile(ws *utils.Workspace, summary utils.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteOutput(ws.SummaryPath(), data)
}

func readSummaryFile(ws *utils.Workspace) (utils.Summary, error) {
	var summary utils.Summary

	data, err := os.ReadFile(ws.SummaryPath())
	if err != nil {
		return summary, err
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("invalid summary: %w", err)
	}
	return summary, nil
}

// =============================================================================
// VALIDATE
// =============================================================================

// handleValidate checks an uploaded table and reports every problem. The
// upload is not kept.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ws, uploadName, err := s.receiveUpload(w, r)
	if err != nil {
		return
	}
	defer s.discard(r, ws)

	report, err := validation.NewValidator(s.cfg).ValidateFile(ws.InputPath(uploadName))
	if err != nil {
		summary := utils.NewSummary(uploadName, "", nil, err)
		respondConversionError(w, r, err, summary)
		return
	}

	resp := ValidateResponse{
		Input:        uploadName,
		Valid:        report.IsValid,
		RowsChecked:  report.RowsChecked,
		LeafCount:    report.LeafCount,
		Skipped:      report.Skipped,
		ErrorCount:   report.ErrorCount,
		WarningCount: report.WarningCount,
		Issues:       make([]IssueResponse, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		msg := ""
		if issue.Err != nil {
			msg = issue.Err.Error()
		}
		resp.Issues = append(resp.Issues, IssueResponse{
			Severity:   issue.Severity,
			Kind:       issue.Kind,
			Row:        issue.Row,
			CategoryID: issue.CategoryID,
			Message:    msg,
		})
	}

	status := http.StatusOK
	if !report.IsValid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

