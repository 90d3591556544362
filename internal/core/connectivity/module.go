package connectivity

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-nethealth/config"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("connectivity",
		fx.Provide(ProvideMonitor),
		fx.Invoke(registerLifecycle),
	)
}

// Params 监控器依赖参数
type Params struct {
	fx.In

	Bus        pkgif.EventBus
	UnifiedCfg *config.Config   `optional:"true"`
	Config     *Config          `optional:"true"`
	Source     pkgif.LinkSource `optional:"true"`
	Clock      clock.Clock      `optional:"true"`
}

// Result 模块输出
type Result struct {
	fx.Out

	Connectivity *Monitor
	Monitor      pkgif.Monitor `group:"monitors"`
}

// ProvideMonitor 提供连通性监控器
//
// 未注入信号源时使用系统轮询信号源，其生命周期由本模块管理。
func ProvideMonitor(p Params) Result {
	source := p.Source
	if source == nil {
		cfg := p.Config
		if cfg == nil {
			cfg = ConfigFromUnified(p.UnifiedCfg)
		}
		source = NewPollingSource(cfg, WithPollingClock(p.Clock))
	}
	m := NewMonitor(p.Bus, source)
	return Result{Connectivity: m, Monitor: m}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Monitor *Monitor
}

// startStopper 需要启停的信号源
type startStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if s, ok := input.Monitor.source.(startStopper); ok {
				if err := s.Start(ctx); err != nil {
					return err
				}
			}
			return input.Monitor.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			err := input.Monitor.Stop()
			if s, ok := input.Monitor.source.(startStopper); ok {
				if serr := s.Stop(); serr != nil && err == nil {
					err = serr
				}
			}
			return err
		},
	})
}
