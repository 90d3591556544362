package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideCollector),
		fx.Invoke(registerLifecycle),
	)
}

// Params 收集器依赖参数
type Params struct {
	fx.In

	Registerer prometheus.Registerer `optional:"true"`
}

// ProvideCollector 提供收集器
//
// 未注入 Registerer 时注册到 prometheus.DefaultRegisterer。
func ProvideCollector(p Params) (*Collector, error) {
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return NewCollector(reg)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC        fx.Lifecycle
	Collector *Collector
	Bus       pkgif.EventBus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return input.Collector.Attach(input.Bus)
		},
		OnStop: func(_ context.Context) error {
			return input.Collector.Detach()
		},
	})
}
