package nethealth

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-nethealth/config"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// Option 引擎配置选项
type Option func(*options) error

// options 引擎内部选项
type options struct {
	config     *config.Config
	clock      clock.Clock
	linkSource pkgif.LinkSource
	prober     pkgif.Prober
	registerer prometheus.Registerer

	// userFxOptions 用户自定义 Fx 选项（测试注入用）
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{
		config: config.NewConfig(),
	}
}

// apply 依次应用选项
func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
// 配置
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用给定配置（会被复制，调用方后续修改不影响引擎）
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("nethealth: nil config")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithConfigFile 从 JSON/YAML 文件加载配置
//
// 与 WithConfig 同时使用时，后应用的选项生效。
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
		o.config = cfg
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 依赖注入
// ════════════════════════════════════════════════════════════════════════════

// WithClock 设置时钟，测试中传入 clock.NewMock()
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithLinkSource 设置链路事件源，替代默认的接口轮询
func WithLinkSource(src pkgif.LinkSource) Option {
	return func(o *options) error {
		o.linkSource = src
		return nil
	}
}

// WithProber 设置主动模式的探测器，替代按资源 scheme 选择的默认实现
func WithProber(p pkgif.Prober) Option {
	return func(o *options) error {
		o.prober = p
		return nil
	}
}

// WithRegisterer 设置指标注册器并启用指标收集
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("nethealth: nil registerer")
		}
		o.registerer = reg
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
