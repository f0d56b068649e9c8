package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"modfact/pkg/types"
	"modfact/worker-node/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	stats server.Stats
}

func (f fakeStats) Stats() server.Stats { return f.stats }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(fakeStats{stats: server.Stats{
		State:   types.StListening,
		Served:  7,
		Failed:  2,
		Active:  map[types.WorkerState]int{types.StComputing: 1, types.StReading: 3},
		Started: time.Now().Add(-time.Minute),
	}})
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "listening", body.State)
	assert.Equal(t, uint64(7), body.TasksServed)
	assert.Equal(t, uint64(2), body.TasksFailed)
}

func TestMonitoring(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/monitoring", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body MonitoringStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]int{"computing": 1, "reading": 3}, body.Connections)
	assert.Equal(t, uint64(7), body.TasksServed)
	assert.Positive(t, body.System.NumGoroutine)
	assert.Positive(t, body.System.TotalCPUCores)
	assert.NotEmpty(t, body.Uptime)
}

func TestUnknownRoute(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthWhileClosing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(fakeStats{stats: server.Stats{State: types.StClosed}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "closed", body.State)
}
