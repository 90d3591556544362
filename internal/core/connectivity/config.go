package connectivity

import (
	"time"

	"github.com/dep2p/go-nethealth/config"
	"github.com/dep2p/go-nethealth/pkg/types"
)

// Config 连通性监控配置
type Config struct {
	// PollInterval 轮询信号源的轮询间隔
	PollInterval time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 2 * time.Second,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return types.NewConfigError("connectivity.poll_interval", "must be positive, got %s", c.PollInterval)
	}
	return nil
}

// ConfigFromUnified 从统一配置创建连通性配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return &Config{PollInterval: cfg.Connectivity.PollInterval.Duration()}
}
