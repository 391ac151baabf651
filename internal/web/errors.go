package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ginjaninja78/category-launch-generator/internal/logging"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
	"github.com/ginjaninja78/category-launch-generator/pkg/utils"
)

// Error codes for failures outside the conversion taxonomy.
const (
	codeBadRequest = "bad_request"
	codeNotFound   = "not_found"
	codeTooLarge   = "too_large"
	codeInternal   = types.KindInternal
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Summary *utils.Summary `json:"summary,omitempty"`
}

// statusForKind maps a conversion error code to an HTTP status. Problems
// with the uploaded data are the client's; configuration and internal
// problems are the server's.
func statusForKind(kind string) int {
	switch kind {
	case types.KindSchema, types.KindRowFormat, types.KindMapping, types.KindEmptyResult:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondConversionError logs err and writes it with the summary attached.
func respondConversionError(w http.ResponseWriter, r *http.Request, err error, summary utils.Summary) {
	kind := types.Kind(err)
	status := statusForKind(kind)

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("conversion failed", "kind", kind, "error", err)
	} else {
		logger.Info("conversion rejected", "kind", kind, "error", err)
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: kind, Summary: &summary})
}

// respondError writes a plain error response.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	logging.FromContext(r.Context()).Debug("request error", "status", status, "code", code, "error", message)
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondFormError maps multipart parsing failures.
func respondFormError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, r, http.StatusRequestEntityTooLarge, codeTooLarge, "upload exceeds the size limit")
		return
	}
	respondError(w, r, http.StatusBadRequest, codeBadRequest, "invalid multipart form")
}

// writeJSON encodes v as JSON and writes it with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
