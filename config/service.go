package config

import (
	"regexp"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// EndpointClass 端点类配置
type EndpointClass struct {
	// Name 端点类名称
	Name string `json:"name" yaml:"name"`

	// Pattern "*" 或 Go 正则
	Pattern string `json:"pattern" yaml:"pattern"`
}

// ServiceConfig 服务健康监控配置
type ServiceConfig struct {
	// Classes 端点类，按声明顺序匹配
	// 默认值: [{"*", "*"}]
	Classes []EndpointClass `json:"classes" yaml:"classes"`

	// TrackedStatuses 计入失败的状态码
	// 默认值: [502, 503, 504]
	TrackedStatuses []int `json:"tracked_statuses" yaml:"tracked_statuses"`

	// FailureThreshold 降级阈值
	// 默认值: 2
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold"`

	// DecrementDelay 单次失败的保持时间
	// 默认值: 10s
	DecrementDelay Duration `json:"decrement_delay" yaml:"decrement_delay"`

	// MatchCacheSize 请求键匹配缓存容量，0 表示不缓存
	// 默认值: 1024
	MatchCacheSize int `json:"match_cache_size" yaml:"match_cache_size"`
}

// DefaultServiceConfig 返回默认的服务健康配置
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Classes:          []EndpointClass{{Name: "*", Pattern: "*"}},
		TrackedStatuses:  []int{502, 503, 504},
		FailureThreshold: 2,
		DecrementDelay:   Duration(10 * time.Second),
		MatchCacheSize:   1024,
	}
}

// Validate 验证服务健康配置
func (c *ServiceConfig) Validate() error {
	var err error
	if len(c.Classes) == 0 {
		err = multierr.Append(err, types.NewConfigError("service.classes", "at least one class is required"))
	}
	for _, cls := range c.Classes {
		if cls.Pattern == "*" {
			continue
		}
		if _, cerr := regexp.Compile(cls.Pattern); cerr != nil {
			err = multierr.Append(err, types.NewConfigError("service.classes", "class %q: %v", cls.Name, cerr))
		}
	}
	if c.FailureThreshold < 1 {
		err = multierr.Append(err, types.NewConfigError("service.failure_threshold", "must be >= 1, got %d", c.FailureThreshold))
	}
	if c.DecrementDelay < 0 {
		err = multierr.Append(err, types.NewConfigError("service.decrement_delay", "must not be negative, got %s", c.DecrementDelay))
	}
	return err
}

// WithClasses 设置端点类
func (c ServiceConfig) WithClasses(classes ...EndpointClass) ServiceConfig {
	c.Classes = classes
	return c
}

// WithFailureThreshold 设置降级阈值
func (c ServiceConfig) WithFailureThreshold(n int) ServiceConfig {
	c.FailureThreshold = n
	return c
}

// WithDecrementDelay 设置失败保持时间
func (c ServiceConfig) WithDecrementDelay(d time.Duration) ServiceConfig {
	c.DecrementDelay = Duration(d)
	return c
}
