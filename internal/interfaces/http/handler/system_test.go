package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalens/backend/internal/interfaces/http/router"
)

func newSystemEnv(t *testing.T) *testEnv {
	t.Helper()
	g := gin.New()
	router.NewRouter(g, router.WithAPIVersion("v1")).
		Register(NewSystemHandler("datalens", "1.2.3")).
		Setup()
	return &testEnv{engine: g}
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	env := newSystemEnv(t)

	rec := env.get(t, "/api/v1/system/info")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	require.True(t, env2.Success)
	assert.Equal(t, "datalens", env2.Data["name"])
	assert.Equal(t, "1.2.3", env2.Data["version"])
	assert.NotEmpty(t, env2.Data["go_version"])
	assert.NotEmpty(t, env2.Data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	env := newSystemEnv(t)

	rec := env.get(t, "/api/v1/system/ping")

	require.Equal(t, http.StatusOK, rec.Code)
	env2 := decodeEnvelope(t, rec)
	assert.Equal(t, "pong", env2.Data["message"])
	assert.NotEmpty(t, env2.Data["timestamp"])
}
