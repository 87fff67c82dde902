package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSalesDataset(t *testing.T, env *testEnv) {
	t.Helper()
	env.loadDataset(t,
		[]string{"city", "amount", "visits"},
		[][]string{
			{"ny", "10", "100"},
			{"la", "20", "200"},
			{"ny", "30", "300"},
			{"sf", "40", "400"},
		})
}

func TestEDAHandler_Info(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/info")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	require.True(t, env2.Success)
	assert.Equal(t, float64(4), env2.Data["row_count"])
	assert.Equal(t, float64(3), env2.Data["column_count"])
	assert.Len(t, env2.Data["columns"].([]any), 3)
}

func TestEDAHandler_Info_NoDataLoaded(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/v1/eda/info")

	env2 := requireErrorCode(t, rec, http.StatusConflict, "NO_DATA_LOADED")
	assert.Equal(t, "Please load data first.", env2.Error.Message)
}

func TestEDAHandler_Statistics_ColumnFilter(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/statistics?columns=amount,%20visits")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.Equal(t, []any{"amount", "visits"}, env2.Data["columns_analyzed"])
}

func TestEDAHandler_Statistics_ColumnNotFound(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/statistics?columns=nope")

	requireErrorCode(t, rec, http.StatusNotFound, "COLUMN_NOT_FOUND")
}

func TestEDAHandler_Correlations(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/correlations")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.Equal(t, "pearson", env2.Data["method"])
	matrix := env2.Data["correlation_matrix"].(map[string]any)
	amount := matrix["amount"].(map[string]any)
	assert.Equal(t, float64(1), amount["visits"])
}

func TestEDAHandler_Correlations_InsufficientNumericColumns(t *testing.T) {
	env := newTestEnv(t)
	env.loadDataset(t,
		[]string{"city"},
		[][]string{{"ny"}, {"la"}, {"ny"}})

	rec := env.get(t, "/api/v1/eda/correlations")

	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "INSUFFICIENT_NUMERIC_COLUMNS")
}

func TestEDAHandler_ValueCounts(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/value-counts/city?top_n=2")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.Equal(t, "city", env2.Data["column"])
	values := env2.Data["value_counts"].([]any)
	require.Len(t, values, 2)
	first := values[0].(map[string]any)
	assert.Equal(t, "ny", first["value"])
	assert.Equal(t, float64(2), first["count"])
}

func TestEDAHandler_ValueCounts_InvalidTopN(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/value-counts/city?top_n=abc")

	requireErrorCode(t, rec, http.StatusBadRequest, "INVALID_PARAMETER")

	rec = env.get(t, "/api/v1/eda/value-counts/city?top_n=0")

	requireErrorCode(t, rec, http.StatusBadRequest, "INVALID_PARAMETER")
}

func TestEDAHandler_Outliers(t *testing.T) {
	env := newTestEnv(t)
	env.loadDataset(t, []string{"amount"},
		[][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}, {"100"}})

	rec := env.get(t, "/api/v1/eda/outliers/amount?method=iqr")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.Equal(t, "iqr", env2.Data["method"])
	assert.Equal(t, float64(1), env2.Data["outlier_count"])
}

func TestEDAHandler_Outliers_NonNumericColumn(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/outliers/city")

	requireErrorCode(t, rec, http.StatusUnprocessableEntity, "NOT_NUMERIC_COLUMN")
}

func TestEDAHandler_Outliers_UnknownMethod(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/outliers/amount?method=mad")

	requireErrorCode(t, rec, http.StatusBadRequest, "INVALID_PARAMETER")
}

func TestEDAHandler_Quality(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/quality")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.Equal(t, float64(100), env2.Data["quality_score"])
}

func TestEDAHandler_FullReport(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.get(t, "/api/v1/eda/report")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.NotNil(t, env2.Data["basic_info"])
	assert.NotNil(t, env2.Data["statistics"])
	assert.NotNil(t, env2.Data["correlations"])
	assert.NotNil(t, env2.Data["data_quality"])
}
