package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wanwatch/internal/api/response"
	"wanwatch/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticStatus struct {
	status types.MonitorStatus
}

func (s *staticStatus) Status() types.MonitorStatus { return s.status }

func activeStatus() types.MonitorStatus {
	raisedAt := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	return types.MonitorStatus{
		InstanceID: "test-instance",
		Hostname:   "home.example.com",
		Interval:   10 * time.Second,
		StartTime:  time.Now().Add(-3 * time.Hour),
		Cycles:     42,
		LastCycle: &types.CycleResult{
			Observation: types.NewObservation("198.51.100.20", true, "203.0.113.9", true),
			Action:      types.ActionSuppress,
			State:       types.ActiveSince(raisedAt),
			StartedAt:   time.Now().Add(-5 * time.Second),
			Duration:    200 * time.Millisecond,
		},
	}
}

func get(t *testing.T, r *Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestStatusEndpoint(t *testing.T) {
	r := NewRouter(&staticStatus{status: activeStatus()}, true, zaptest.NewLogger(t))

	w := get(t, r, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body struct {
		Code int `json:"code"`
		Data struct {
			InstanceID string `json:"instance_id"`
			Hostname   string `json:"hostname"`
			Cycles     uint64 `json:"cycles"`
			LastCycle  struct {
				Action      string `json:"action"`
				Observation struct {
					RouterIP string `json:"router_ip"`
					DNSIP    string `json:"dns_ip"`
				} `json:"observation"`
			} `json:"last_cycle"`
			Alert struct {
				Active   bool       `json:"active"`
				RaisedAt *time.Time `json:"raised_at"`
			} `json:"alert"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, http.StatusOK, body.Code)
	assert.Equal(t, "test-instance", body.Data.InstanceID)
	assert.Equal(t, "home.example.com", body.Data.Hostname)
	assert.Equal(t, uint64(42), body.Data.Cycles)
	assert.Equal(t, "suppress", body.Data.LastCycle.Action)
	assert.Equal(t, "198.51.100.20", body.Data.LastCycle.Observation.RouterIP)
	assert.Equal(t, "203.0.113.9", body.Data.LastCycle.Observation.DNSIP)
	assert.True(t, body.Data.Alert.Active)
	require.NotNil(t, body.Data.Alert.RaisedAt)
}

func TestStatusEndpointInactive(t *testing.T) {
	r := NewRouter(&staticStatus{status: types.MonitorStatus{InstanceID: "x", StartTime: time.Now()}}, true, zaptest.NewLogger(t))

	w := get(t, r, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alert":{"active":false}`)
}

func TestHealthEndpoints(t *testing.T) {
	provider := &staticStatus{status: activeStatus()}
	r := NewRouter(provider, true, zaptest.NewLogger(t))

	w := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"healthy": true}`, w.Body.String())

	w = get(t, r, "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)

	provider.status.LastCycle.StartedAt = time.Now().Add(-time.Hour)

	w = get(t, r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = get(t, r, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "monitor loop stalled")
}

func TestRequestIDPropagated(t *testing.T) {
	r := NewRouter(&staticStatus{status: activeStatus()}, true, zaptest.NewLogger(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"request_id":"abc-123"`)
}

type panicStatus struct{}

func (panicStatus) Status() types.MonitorStatus { panic("snapshot unavailable") }

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestUnknownRoute(t *testing.T) {
	r := NewRouter(&staticStatus{}, true, zaptest.NewLogger(t))

	w := get(t, r, "/api/v1/alerts")
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Equal(t, "error", body.Message)
	assert.Contains(t, body.Error, "/api/v1/alerts")
	assert.Equal(t, w.Header().Get("X-Request-ID"), body.RequestID)
}

func TestPanicRecovered(t *testing.T) {
	r := NewRouter(panicStatus{}, true, zaptest.NewLogger(t))

	w := get(t, r, "/api/v1/status")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusInternalServerError, body.Code)
	assert.Equal(t, "internal server error", body.Error)
	assert.NotContains(t, w.Body.String(), "snapshot unavailable")

	// server keeps serving after a panic
	assert.Equal(t, http.StatusNotFound, get(t, r, "/nope").Code)
}

func TestServerStartShutdown(t *testing.T) {
	r := NewRouter(&staticStatus{status: activeStatus()}, true, zaptest.NewLogger(t))
	srv := NewServer("127.0.0.1:0", r, zaptest.NewLogger(t))
	require.NoError(t, srv.Start())

	resp, err := http.Get(fmt.Sprintf("http://%s/health", srv.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	_, err = http.Get(fmt.Sprintf("http://%s/health", srv.Addr()))
	assert.Error(t, err)
}

func TestServerBindError(t *testing.T) {
	r := NewRouter(&staticStatus{}, true, zaptest.NewLogger(t))
	first := NewServer("127.0.0.1:0", r, zaptest.NewLogger(t))
	require.NoError(t, first.Start())
	defer func() { _ = first.Shutdown(context.Background()) }()

	second := NewServer(first.Addr().String(), r, zaptest.NewLogger(t))
	assert.Error(t, second.Start())
}
