package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nethealth/config"
	"github.com/dep2p/go-nethealth/pkg/types"
)

type fakeView struct{}

func (fakeView) Monitors() []types.MonitorName {
	return []types.MonitorName{types.MonitorConnectivity, types.MonitorService}
}
func (fakeView) Stable() bool                  { return true }
func (fakeView) FailureCounts() map[string]int { return map[string]int{"api": 1} }

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"NETHEALTH_RESOURCE":          "tcp://example.com:443",
		"NETHEALTH_LISTEN_ADDR":       "127.0.0.1:9000",
		"NETHEALTH_FAILURE_THRESHOLD": "4",
		"NETHEALTH_STABILITY":         "off",
	}
	cfg := config.NewConfig()
	applyEnvOverrides(cfg, func(k string) string { return env[k] })

	assert.Equal(t, "tcp://example.com:443", cfg.Stability.Resource)
	assert.Equal(t, "127.0.0.1:9000", cfg.Metrics.ListenAddr)
	assert.Equal(t, 4, cfg.Service.FailureThreshold)
	assert.False(t, cfg.Stability.Enabled)
}

func TestApplyEnvOverrides_IgnoresBadValues(t *testing.T) {
	cfg := config.NewConfig()
	applyEnvOverrides(cfg, func(k string) string {
		if k == "NETHEALTH_FAILURE_THRESHOLD" {
			return "many"
		}
		return ""
	})
	assert.Equal(t, 2, cfg.Service.FailureThreshold)
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(newMux(fakeView{}, prometheus.NewRegistry(), newHub()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap healthSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.True(t, snap.Stable)
	assert.Equal(t, map[string]int{"api": 1}, snap.Failures)
	assert.Len(t, snap.Monitors, 2)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "nethealth_test_total"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := httptest.NewServer(newMux(fakeView{}, reg, newHub()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nethealth_test_total 1")
}

func TestEventsWebsocket(t *testing.T) {
	h := newHub()
	srv := httptest.NewServer(newMux(fakeView{}, prometheus.NewRegistry(), h))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.count() == 1 }, time.Second, time.Millisecond)

	h.publish(types.StatusEvent{
		ID:        "evt-1",
		Status:    types.StatusDegraded,
		Args:      []any{"api"},
		Timestamp: time.Unix(1700000000, 0).UTC(),
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var msg eventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "evt-1", msg.ID)
	assert.Equal(t, "degraded", msg.Status)
	assert.Equal(t, "api", msg.Target)

	h.close()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "hub 关闭后连接被关闭")
}
