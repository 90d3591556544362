package nethealth

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-nethealth/config"
	"github.com/dep2p/go-nethealth/internal/core/connectivity"
	"github.com/dep2p/go-nethealth/internal/core/eventbus"
	"github.com/dep2p/go-nethealth/internal/core/metrics"
	"github.com/dep2p/go-nethealth/internal/core/service"
	"github.com/dep2p/go-nethealth/internal/core/stability"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
// Fx 应用构建
// ════════════════════════════════════════════════════════════════════════════

// buildFxApp 根据选项装配 Fx 应用
//
// 模块按依赖顺序排列：事件总线最先，指标收集器最后。
func buildFxApp(e *Engine, o *options) *fx.App {
	cfg := o.config

	fxOpts := []fx.Option{
		// fx 自身的事件日志不进入业务日志
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Supply(cfg),
	}

	fxOpts = append(fxOpts, supplyDependencies(o)...)

	fxOpts = append(fxOpts,
		eventbus.Module(),
		connectivity.Module(),
		service.Module(),
	)

	if cfg.Stability.Enabled {
		fxOpts = append(fxOpts, stability.Module())
	}

	if metricsEnabled(o) {
		fxOpts = append(fxOpts, metrics.Module())
	}

	fxOpts = append(fxOpts, o.userFxOptions...)

	fxOpts = append(fxOpts, fx.Invoke(func(c engineComponents) {
		e.inject(c)
	}))

	return fx.New(fxOpts...)
}

// supplyDependencies 把外部注入的依赖转为 Fx Provider
//
// 未设置的依赖不提供，由各模块的 optional 参数回退到默认实现。
func supplyDependencies(o *options) []fx.Option {
	var opts []fx.Option
	if o.clock != nil {
		c := o.clock
		opts = append(opts, fx.Provide(func() clock.Clock { return c }))
	}
	if o.linkSource != nil {
		src := o.linkSource
		opts = append(opts, fx.Provide(func() pkgif.LinkSource { return src }))
	}
	if o.prober != nil && o.config.Stability.Enabled {
		p := o.prober
		opts = append(opts, fx.Provide(func() pkgif.Prober { return p }))
	}
	if o.registerer != nil {
		reg := o.registerer
		opts = append(opts, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	return opts
}

// metricsEnabled 配置开启或显式传入注册器时启用指标
func metricsEnabled(o *options) bool {
	return o.config.Metrics.Enabled || o.registerer != nil
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入
// ════════════════════════════════════════════════════════════════════════════

// engineComponents 从 Fx 容器注入到 Engine 的组件
type engineComponents struct {
	fx.In

	Config       *config.Config
	Bus          pkgif.EventBus
	Connectivity *connectivity.Monitor
	Service      *service.Monitor
	Stability    *stability.Monitor `optional:"true"`
	Collector    *metrics.Collector `optional:"true"`
	Monitors     []pkgif.Monitor    `group:"monitors"`
}
