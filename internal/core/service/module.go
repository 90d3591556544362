package service

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-nethealth/config"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("service",
		fx.Provide(ProvideMonitor),
		fx.Invoke(registerLifecycle),
	)
}

// Params 监控器依赖参数
type Params struct {
	fx.In

	Bus        pkgif.EventBus
	UnifiedCfg *config.Config `optional:"true"`
	Config     *Config        `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// Result 模块输出
type Result struct {
	fx.Out

	Service   *Monitor
	ErrorSink pkgif.ErrorSink
	Monitor   pkgif.Monitor `group:"monitors"`
}

// ProvideMonitor 提供服务健康监控器
func ProvideMonitor(p Params) (Result, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = ConfigFromUnified(p.UnifiedCfg)
	}
	m, err := NewMonitor(p.Bus, cfg, WithClock(p.Clock))
	if err != nil {
		return Result{}, err
	}
	return Result{Service: m, ErrorSink: m, Monitor: m}, nil
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Monitor *Monitor
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Monitor.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Monitor.Stop()
		},
	})
}
