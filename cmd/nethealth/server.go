package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// healthView 引擎的只读视图
type healthView interface {
	Monitors() []types.MonitorName
	Stable() bool
	FailureCounts() map[string]int
}

// healthSnapshot /healthz 响应
type healthSnapshot struct {
	Monitors []types.MonitorName `json:"monitors"`
	Stable   bool                `json:"stable"`
	Failures map[string]int      `json:"failures"`
}

// newMux 注册 HTTP 端点
//
//	/metrics  Prometheus 指标
//	/healthz  当前健康快照
//	/events   websocket 事件流
func newMux(view healthView, gatherer prometheus.Gatherer, events http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthSnapshot{
			Monitors: view.Monitors(),
			Stable:   view.Stable(),
			Failures: view.FailureCounts(),
		})
	})
	mux.Handle("/events", events)
	return mux
}
