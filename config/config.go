// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入各监控器的子配置，每个子配置在独立文件中定义。
// 支持 JSON 与 YAML 两种格式，时长字段接受 "10s" 形式的字符串。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Service.FailureThreshold = 3
//	cfg.Stability.Resource = "https://example.com/ping"
//
//	// 从文件加载（按扩展名选择格式）
//	cfg, err := config.LoadFile("nethealth.yaml")
package config

import (
	"errors"

	"go.uber.org/multierr"
)

// Config 是 nethealth 的完整配置结构
//
//   - Service: 服务健康监控（DEGRADED / RESOLVED）
//   - Stability: 网络稳定性监控（STABLE / UNSTABLE）
//   - Connectivity: 链路连通性监控（ONLINE / OFFLINE）
//   - Metrics: Prometheus 指标与事件推送
type Config struct {
	// Service 服务健康监控配置
	Service ServiceConfig `json:"service" yaml:"service"`

	// Stability 稳定性监控配置
	Stability StabilityConfig `json:"stability" yaml:"stability"`

	// Connectivity 连通性监控配置
	Connectivity ConnectivityConfig `json:"connectivity" yaml:"connectivity"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Service:      DefaultServiceConfig(),
		Stability:    DefaultStabilityConfig(),
		Connectivity: DefaultConnectivityConfig(),
		Metrics:      DefaultMetricsConfig(),
	}
}

// Validate 验证配置，返回全部错误
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	return multierr.Combine(
		c.Service.Validate(),
		c.Stability.Validate(),
		c.Connectivity.Validate(),
		c.Metrics.Validate(),
	)
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Service.Classes = append([]EndpointClass(nil), c.Service.Classes...)
	out.Service.TrackedStatuses = append([]int(nil), c.Service.TrackedStatuses...)
	return &out
}
