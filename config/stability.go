package config

import (
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// StabilityConfig 稳定性监控配置
//
// Resource 为空时为被动模式，由 Observe / 插桩 Transport 提供样本；
// 否则为主动模式，周期性探测 Resource。
type StabilityConfig struct {
	// Enabled 是否启用稳定性监控
	// 默认值: true
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxBufferSize 滑动窗口容量
	// 默认值: 10
	MaxBufferSize int `json:"max_buffer_size" yaml:"max_buffer_size"`

	// SpeedThreshold 速度阈值（字节/毫秒）
	// 默认值: 50
	SpeedThreshold float64 `json:"speed_threshold" yaml:"speed_threshold"`

	// Resource 探测目标（http / https / tcp / dns）
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`

	// Interval 探测间隔
	// 默认值: 5s
	Interval Duration `json:"interval" yaml:"interval"`

	// DurationThreshold 慢请求阈值
	// 默认值: 2s
	DurationThreshold Duration `json:"duration_threshold" yaml:"duration_threshold"`

	// ProbeTimeout 单次探测超时
	// 默认值: 10s
	ProbeTimeout Duration `json:"probe_timeout" yaml:"probe_timeout"`

	// RequestThreshold 连续慢请求阈值
	// 默认值: 3
	RequestThreshold int `json:"request_threshold" yaml:"request_threshold"`
}

// DefaultStabilityConfig 返回默认的稳定性配置
func DefaultStabilityConfig() StabilityConfig {
	return StabilityConfig{
		Enabled:           true,
		MaxBufferSize:     10,
		SpeedThreshold:    50,
		Interval:          Duration(5 * time.Second),
		DurationThreshold: Duration(2 * time.Second),
		ProbeTimeout:      Duration(10 * time.Second),
		RequestThreshold:  3,
	}
}

// Validate 验证稳定性配置
//
// resource 的格式由稳定性监控器在构造时检查。
func (c *StabilityConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	var err error
	if c.MaxBufferSize < 1 {
		err = multierr.Append(err, types.NewConfigError("stability.max_buffer_size", "must be >= 1, got %d", c.MaxBufferSize))
	}
	if c.SpeedThreshold < 0 {
		err = multierr.Append(err, types.NewConfigError("stability.speed_threshold", "must not be negative, got %v", c.SpeedThreshold))
	}
	if c.Resource == "" {
		return err
	}
	if c.Interval <= 0 {
		err = multierr.Append(err, types.NewConfigError("stability.interval", "must be positive, got %s", c.Interval))
	}
	if c.DurationThreshold <= 0 {
		err = multierr.Append(err, types.NewConfigError("stability.duration_threshold", "must be positive, got %s", c.DurationThreshold))
	}
	if c.RequestThreshold < 1 {
		err = multierr.Append(err, types.NewConfigError("stability.request_threshold", "must be >= 1, got %d", c.RequestThreshold))
	}
	return err
}

// WithResource 切换到主动模式
func (c StabilityConfig) WithResource(resource string) StabilityConfig {
	c.Resource = resource
	return c
}

// WithEnabled 设置是否启用
func (c StabilityConfig) WithEnabled(enabled bool) StabilityConfig {
	c.Enabled = enabled
	return c
}
