// Package metrics 把状态事件导出为 Prometheus 指标
//
// Collector 订阅事件总线上的所有状态，维护：
//
//	nethealth_status_transitions_total{status}          状态事件计数
//	nethealth_last_transition_timestamp_seconds{status} 最近一次事件的 Unix 时间
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	c, _ := metrics.NewCollector(reg)
//	_ = c.Attach(bus)
//	defer c.Detach()
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics
