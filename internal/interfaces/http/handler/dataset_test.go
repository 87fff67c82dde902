package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetHandler_Upload_CSV(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartFile(t, "sales.csv", "city,amount\nny,10\nla,20\n")

	rec := env.request(t, http.MethodPost, "/api/v1/data/upload", body, contentType)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env2 := decodeEnvelope(t, rec)
	require.True(t, env2.Success)

	meta := env2.Data["metadata"].(map[string]any)
	assert.Equal(t, "sales.csv", meta["source"])
	assert.Equal(t, float64(2), meta["row_count"])
	assert.Equal(t, float64(2), meta["column_count"])
	assert.Equal(t, []any{"city", "amount"}, env2.Data["columns"])

	snap, err := env.session.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Table.RowCount())
}

func TestDatasetHandler_Upload_NoFile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/data/upload", nil, "multipart/form-data")

	requireErrorCode(t, rec, http.StatusBadRequest, "ERR_BAD_REQUEST")
}

func TestDatasetHandler_Upload_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartFile(t, "data.parquet", "binary")

	rec := env.request(t, http.MethodPost, "/api/v1/data/upload", body, contentType)

	requireErrorCode(t, rec, http.StatusBadRequest, "UNSUPPORTED_FORMAT")
}

func TestDatasetHandler_Upload_EmptyFile(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartFile(t, "empty.csv", "")

	rec := env.request(t, http.MethodPost, "/api/v1/data/upload", body, contentType)

	requireErrorCode(t, rec, http.StatusBadRequest, "EMPTY_FILE")
}

func TestDatasetHandler_Current(t *testing.T) {
	env := newTestEnv(t)
	env.loadDataset(t,
		[]string{"city", "amount"},
		[][]string{{"ny", "10"}, {"la", ""}})

	rec := env.get(t, "/api/v1/data/current")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	require.True(t, env2.Success)

	rows := env2.Data["rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, "ny", first["city"])
	second := rows[1].(map[string]any)
	assert.Nil(t, second["amount"])
	assert.Equal(t, false, env2.Data["preview"])
}

func TestDatasetHandler_Current_NoDataLoaded(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/v1/data/current")

	env2 := requireErrorCode(t, rec, http.StatusConflict, "NO_DATA_LOADED")
	assert.Equal(t, "Please load data first.", env2.Error.Message)
}

func TestDatasetHandler_Current_PreviewTruncation(t *testing.T) {
	env := newTestEnv(t)
	records := make([][]string, 150)
	for i := range records {
		records[i] = []string{"1"}
	}
	env.loadDataset(t, []string{"v"}, records)

	rec := env.get(t, "/api/v1/data/current")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.Len(t, env2.Data["rows"].([]any), 100)
	assert.Equal(t, true, env2.Data["preview"])
}

func TestDatasetHandler_Clear(t *testing.T) {
	env := newTestEnv(t)
	env.loadDataset(t, []string{"v"}, [][]string{{"1"}})

	rec := env.request(t, http.MethodDelete, "/api/v1/data/current", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.get(t, "/api/v1/data/current")
	requireErrorCode(t, rec, http.StatusConflict, "NO_DATA_LOADED")
}
