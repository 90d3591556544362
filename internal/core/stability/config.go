package stability

import (
	"net/url"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-nethealth/config"
	"github.com/dep2p/go-nethealth/pkg/types"
)

// 支持的探测 scheme
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeTCP   = "tcp"
	SchemeDNS   = "dns"
)

// Config 稳定性监控配置
type Config struct {
	// ========== 被动模式 ==========

	// MaxBufferSize 滑动窗口容量
	MaxBufferSize int

	// SpeedThreshold 速度阈值（字节/毫秒）
	SpeedThreshold float64

	// ========== 主动模式 ==========

	// Resource 探测目标，为空时使用被动模式
	Resource string

	// Interval 探测间隔
	Interval time.Duration

	// DurationThreshold 慢请求耗时阈值
	DurationThreshold time.Duration

	// ProbeTimeout 单次探测超时
	ProbeTimeout time.Duration

	// RequestThreshold 连续慢请求阈值
	RequestThreshold int
}

// DefaultConfig 返回默认配置（被动模式）
func DefaultConfig() *Config {
	return &Config{
		MaxBufferSize:     10,
		SpeedThreshold:    50,
		Interval:          5 * time.Second,
		DurationThreshold: 2 * time.Second,
		ProbeTimeout:      10 * time.Second,
		RequestThreshold:  3,
	}
}

// Active 是否为主动模式
func (c *Config) Active() bool {
	return c.Resource != ""
}

// Validate 验证配置，返回全部错误
func (c *Config) Validate() error {
	var err error

	if c.MaxBufferSize < 1 {
		err = multierr.Append(err, types.NewConfigError("stability.max_buffer_size", "must be >= 1, got %d", c.MaxBufferSize))
	}
	if c.SpeedThreshold < 0 {
		err = multierr.Append(err, types.NewConfigError("stability.speed_threshold", "must not be negative, got %v", c.SpeedThreshold))
	}

	if !c.Active() {
		return err
	}

	if c.Interval <= 0 {
		err = multierr.Append(err, types.NewConfigError("stability.interval", "must be positive, got %s", c.Interval))
	}
	if c.DurationThreshold <= 0 {
		err = multierr.Append(err, types.NewConfigError("stability.duration_threshold", "must be positive, got %s", c.DurationThreshold))
	}
	if c.ProbeTimeout < 0 {
		err = multierr.Append(err, types.NewConfigError("stability.probe_timeout", "must not be negative, got %s", c.ProbeTimeout))
	}
	if c.RequestThreshold < 1 {
		err = multierr.Append(err, types.NewConfigError("stability.request_threshold", "must be >= 1, got %d", c.RequestThreshold))
	}
	if _, perr := parseResource(c.Resource); perr != nil {
		err = multierr.Append(err, perr)
	}
	return err
}

// parseResource 解析并检查探测目标
func parseResource(resource string) (*url.URL, error) {
	u, err := url.Parse(resource)
	if err != nil {
		return nil, types.NewConfigError("stability.resource", "%v", err)
	}
	switch u.Scheme {
	case SchemeHTTP, SchemeHTTPS, SchemeTCP, SchemeDNS:
	default:
		return nil, types.NewConfigError("stability.resource", "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, types.NewConfigError("stability.resource", "missing host in %q", resource)
	}
	if u.Scheme == SchemeDNS && len(u.Path) <= 1 {
		return nil, types.NewConfigError("stability.resource", "dns resource needs a name, e.g. dns://1.1.1.1:53/example.com")
	}
	return u, nil
}

// ConfigFromUnified 从统一配置创建稳定性配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	sc := cfg.Stability
	return &Config{
		MaxBufferSize:     sc.MaxBufferSize,
		SpeedThreshold:    sc.SpeedThreshold,
		Resource:          sc.Resource,
		Interval:          sc.Interval.Duration(),
		DurationThreshold: sc.DurationThreshold.Duration(),
		ProbeTimeout:      sc.ProbeTimeout.Duration(),
		RequestThreshold:  sc.RequestThreshold,
	}
}
