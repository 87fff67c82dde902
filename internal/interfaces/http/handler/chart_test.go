package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartHandler_Create_Bar(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.postJSON(t, "/api/v1/chart/create", map[string]any{
		"type": "bar",
		"x":    "city",
		"y":    "amount",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env2 := decodeEnvelope(t, rec)
	require.True(t, env2.Success)
	assert.Equal(t, "bar", env2.Data["type"])

	figure := env2.Data["figure"].(map[string]any)
	traces := figure["data"].([]any)
	require.Len(t, traces, 1)
	assert.Equal(t, "bar", traces[0].(map[string]any)["type"])
}

func TestChartHandler_Create_MissingType(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.postJSON(t, "/api/v1/chart/create", map[string]any{"x": "city"})

	requireErrorCode(t, rec, http.StatusBadRequest, "ERR_VALIDATION")
	assert.Contains(t, rec.Body.String(), `"field":"type"`)
}

func TestChartHandler_Create_UnknownType(t *testing.T) {
	env := newTestEnv(t)
	loadSalesDataset(t, env)

	rec := env.postJSON(t, "/api/v1/chart/create", map[string]any{"type": "sunburst"})

	requireErrorCode(t, rec, http.StatusBadRequest, "INVALID_PARAMETER")
}

func TestChartHandler_Create_NoDataLoaded(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON(t, "/api/v1/chart/create", map[string]any{
		"type": "bar", "x": "city", "y": "amount",
	})

	requireErrorCode(t, rec, http.StatusConflict, "NO_DATA_LOADED")
}
