package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/datalens/backend/internal/application/chart"
	"github.com/datalens/backend/internal/application/eda"
	"github.com/datalens/backend/internal/application/export"
	"github.com/datalens/backend/internal/application/session"
	"github.com/datalens/backend/internal/domain/dataset"
	"github.com/datalens/backend/internal/infrastructure/loader"
	"github.com/datalens/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	engine    *gin.Engine
	session   *session.Session
	exportDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	classifier := dataset.NewClassifier(dataset.ClassifierConfig{})
	sess := session.New()
	analysis := eda.NewService(sess, eda.Config{})
	charts := chart.NewService(sess, analysis)
	dir := t.TempDir()
	exports := export.NewService(sess, analysis, nil, dir, nil)
	ld := loader.New(classifier, 0)

	g := gin.New()
	router.NewRouter(g, router.WithAPIVersion("v1")).
		Register(NewDatasetHandler(sess, ld, 1<<20)).
		Register(NewEDAHandler(analysis)).
		Register(NewChartHandler(charts)).
		Register(NewExportHandler(exports)).
		Setup()

	return &testEnv{engine: g, session: sess, exportDir: dir}
}

// loadDataset puts a table into the session directly, bypassing upload.
func (e *testEnv) loadDataset(t *testing.T, names []string, records [][]string) {
	t.Helper()
	table, err := dataset.BuildTable(names, records, dataset.NewClassifier(dataset.ClassifierConfig{}))
	require.NoError(t, err)
	e.session.Replace(table, "test")
}

func (e *testEnv) request(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return e.request(t, http.MethodGet, path, nil, "")
}

func (e *testEnv) postJSON(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.request(t, http.MethodPost, path, bytes.NewReader(data), "application/json")
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   *errorBody     `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	return env
}

// multipartFile builds a multipart body with a single file field.
func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
