package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/category-launch-generator/internal/config"
	"github.com/ginjaninja78/category-launch-generator/internal/types"
	"github.com/ginjaninja78/category-launch-generator/pkg/utils"
)

const testConfig = `
output:
  path: ./out/models.kt
  header_comments: false
condition_mapping:
  "New with tags": 100
  "New without tags": 1
  "Very good": 2
  "Good": 3
  "Satisfactory": 4
  "Not fully functional": 5
package_size_mapping:
  "All shippable": [1, 2, 3]
field_visibility_mapping:
  Brand: VintedUploadItemFieldTypes.BRAND_VISIBLE
  Colour: VintedUploadItemFieldTypes.COLOR_VISIBLE
`

const csvHeader = "Leaf;ID;Level;Brand;Colour;Package size;New with tags;New without tags;Very good;Good;Satisfactory;Not fully functional"

func newTestServer(t *testing.T) (*Server, *utils.FileManager) {
	t.Helper()

	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	files := utils.NewFileManager(t.TempDir())
	require.NoError(t, files.EnsureDirectories())

	return NewServer(cfg, files, Options{}), files
}

func multipartBody(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &body, mw.FormDataContentType()
}

func post(t *testing.T, s *Server, path, name, content string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, uploadField, name, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func table(rows ...string) string {
	return csvHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestUploadDownloadPreview(t *testing.T) {
	s, _ := newTestServer(t)

	rec := post(t, s, "/api/upload", "office.csv", table(
		"FALSE;10;1;FALSE;FALSE;All shippable;FALSE;FALSE;FALSE;FALSE;FALSE;FALSE",
		"TRUE;5429;3;TRUE;FALSE;All shippable;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE",
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var upload UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	assert.Equal(t, 2, upload.Summary.RowsProcessed)
	assert.Equal(t, 1, upload.Summary.LeafCount)
	assert.Equal(t, 1, upload.Summary.Skipped)
	assert.Equal(t, "office.kt", upload.Summary.Output)
	assert.Equal(t, "/api/download/"+upload.ID, upload.DownloadURL)

	rec = get(s, upload.DownloadURL)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="office.kt"`)
	assert.Contains(t, rec.Body.String(), "val leafCategory5429 = CategoryLaunchDataProviderModel(")
	assert.NotContains(t, rec.Body.String(), "leafCategory10 ")

	rec = get(s, upload.PreviewURL)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, upload.ID, preview.ID)
	assert.Equal(t, 1, preview.Summary.LeafCount)
	assert.Contains(t, preview.Source, "val leafCategoryModels = listOf(")
}

func TestUpload_ConversionErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    string
	}{
		{
			name:    "missing column",
			content: "Leaf;ID;Level\nTRUE;1;1\n",
			kind:    types.KindSchema,
		},
		{
			name:    "bad row",
			content: table("TRUE;abc;3;TRUE;FALSE;All shippable;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE"),
			kind:    types.KindRowFormat,
		},
		{
			name:    "unknown package size",
			content: table("TRUE;1;3;TRUE;FALSE;Gigantic;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE"),
			kind:    types.KindMapping,
		},
		{
			name:    "no leaves",
			content: table("FALSE;1;1;FALSE;FALSE;All shippable;FALSE;FALSE;FALSE;FALSE;FALSE;FALSE"),
			kind:    types.KindEmptyResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, files := newTestServer(t)

			rec := post(t, s, "/api/upload", "input.csv", tt.content)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Code)
			assert.NotEmpty(t, resp.Error)
			require.NotNil(t, resp.Summary)
			assert.Empty(t, resp.Summary.Output)

			entries, err := os.ReadDir(files.WorkDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "failed conversions leave no workspace")
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	s, _ := newTestServer(t)

	body, contentType := multipartBody(t, "other_field", "input.csv", table())
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), codeBadRequest)
}

func TestUpload_NotMultipart(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("Leaf;ID"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownload_UnknownWorkspace(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{
		"/api/download/" + uuid.NewString(),
		"/api/download/not-a-uuid",
		"/api/preview/" + uuid.NewString(),
	} {
		rec := get(s, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestValidate(t *testing.T) {
	s, files := newTestServer(t)

	rec := post(t, s, "/api/validate", "input.csv", table(
		"TRUE;abc;3;TRUE;FALSE;All shippable;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE",
		"TRUE;7;3;TRUE;FALSE;Gigantic;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE",
		"TRUE;8;3;TRUE;FALSE;All shippable;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE",
	))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, 3, resp.RowsChecked)
	assert.Equal(t, 2, resp.ErrorCount)
	require.Len(t, resp.Issues, 2)
	assert.Equal(t, types.KindRowFormat, resp.Issues[0].Kind)
	assert.Equal(t, 1, resp.Issues[0].Row)
	assert.Equal(t, types.KindMapping, resp.Issues[1].Kind)
	assert.Equal(t, 2, resp.Issues[1].Row)

	entries, err := os.ReadDir(files.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "validation uploads are not kept")
}

func TestValidate_Clean(t *testing.T) {
	s, _ := newTestServer(t)

	rec := post(t, s, "/api/validate", "input.csv", table(
		"TRUE;8;3;TRUE;FALSE;All shippable;TRUE;FALSE;FALSE;FALSE;FALSE;FALSE",
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, 1, resp.LeafCount)
	assert.Empty(t, resp.Issues)
}

func TestIndexAndHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="csv_file"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = get(s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusForKind(types.KindSchema))
	assert.Equal(t, http.StatusUnprocessableEntity, statusForKind(types.KindEmptyResult))
	assert.Equal(t, http.StatusInternalServerError, statusForKind(types.KindConfig))
	assert.Equal(t, http.StatusInternalServerError, statusForKind(types.KindInternal))
}
