package config

import (
	"time"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// ConnectivityConfig 连通性监控配置
type ConnectivityConfig struct {
	// PollInterval 系统网卡轮询间隔
	// 默认值: 2s
	PollInterval Duration `json:"poll_interval" yaml:"poll_interval"`
}

// DefaultConnectivityConfig 返回默认的连通性配置
func DefaultConnectivityConfig() ConnectivityConfig {
	return ConnectivityConfig{
		PollInterval: Duration(2 * time.Second),
	}
}

// Validate 验证连通性配置
func (c *ConnectivityConfig) Validate() error {
	if c.PollInterval <= 0 {
		return types.NewConfigError("connectivity.poll_interval", "must be positive, got %s", c.PollInterval)
	}
	return nil
}
