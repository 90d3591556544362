package service

import (
	"regexp"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-nethealth/config"
	"github.com/dep2p/go-nethealth/pkg/types"
)

// MatchAll 总是匹配的端点类模式
const MatchAll = "*"

// ============================================================================
//                              配置
// ============================================================================

// ClassConfig 端点类配置
type ClassConfig struct {
	// Name 端点类名称，作为 DEGRADED / RESOLVED 的参数
	Name string

	// Pattern 匹配模式，"*" 或 Go 正则
	Pattern string
}

// Config 服务健康监控配置
type Config struct {
	// Classes 端点类列表，按声明顺序匹配
	Classes []ClassConfig

	// TrackedStatuses 计入失败的 HTTP 状态码
	TrackedStatuses []int

	// FailureThreshold 降级阈值
	FailureThreshold int

	// DecrementDelay 单次失败的保持时间
	DecrementDelay time.Duration

	// MatchCacheSize 匹配结果缓存容量
	MatchCacheSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Classes:          []ClassConfig{{Name: MatchAll, Pattern: MatchAll}},
		TrackedStatuses:  []int{502, 503, 504},
		FailureThreshold: 2,
		DecrementDelay:   10 * time.Second,
		MatchCacheSize:   1024,
	}
}

// Validate 验证配置，返回全部错误
func (c *Config) Validate() error {
	var err error

	if len(c.Classes) == 0 {
		err = multierr.Append(err, types.NewConfigError("service.classes", "at least one class is required"))
	}
	seen := make(map[string]struct{}, len(c.Classes))
	for i, cls := range c.Classes {
		if cls.Name == "" {
			err = multierr.Append(err, types.NewConfigError("service.classes", "class %d has an empty name", i))
		}
		if _, dup := seen[cls.Name]; dup {
			err = multierr.Append(err, types.NewConfigError("service.classes", "duplicate class name %q", cls.Name))
		}
		seen[cls.Name] = struct{}{}

		if cls.Pattern == "" {
			err = multierr.Append(err, types.NewConfigError("service.classes", "class %q has an empty pattern", cls.Name))
		} else if cls.Pattern != MatchAll {
			if _, cerr := regexp.Compile(cls.Pattern); cerr != nil {
				err = multierr.Append(err, types.NewConfigError("service.classes", "class %q: %v", cls.Name, cerr))
			}
		}
	}

	if c.FailureThreshold < 1 {
		err = multierr.Append(err, types.NewConfigError("service.failure_threshold", "must be >= 1, got %d", c.FailureThreshold))
	}
	if c.DecrementDelay < 0 {
		err = multierr.Append(err, types.NewConfigError("service.decrement_delay", "must not be negative, got %s", c.DecrementDelay))
	}
	if c.MatchCacheSize < 0 {
		err = multierr.Append(err, types.NewConfigError("service.match_cache_size", "must not be negative, got %d", c.MatchCacheSize))
	}
	return err
}

// ConfigFromUnified 从统一配置创建服务健康配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	sc := cfg.Service
	out := &Config{
		Classes:          make([]ClassConfig, 0, len(sc.Classes)),
		TrackedStatuses:  append([]int(nil), sc.TrackedStatuses...),
		FailureThreshold: sc.FailureThreshold,
		DecrementDelay:   sc.DecrementDelay.Duration(),
		MatchCacheSize:   sc.MatchCacheSize,
	}
	for _, c := range sc.Classes {
		out.Classes = append(out.Classes, ClassConfig{Name: c.Name, Pattern: c.Pattern})
	}
	return out
}
