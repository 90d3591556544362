package config

import (
	"strings"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否导出 Prometheus 指标
	// 默认值: false
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ListenAddr 命令行守护进程的 HTTP 监听地址（/metrics 与 /events）
	// 默认值: ":9464"
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// DefaultMetricsConfig 返回默认的指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:    false,
		ListenAddr: ":9464",
	}
}

// Validate 验证指标配置
func (c *MetricsConfig) Validate() error {
	if c.Enabled && strings.TrimSpace(c.ListenAddr) == "" {
		return types.NewConfigError("metrics.listen_addr", "required when metrics are enabled")
	}
	return nil
}
