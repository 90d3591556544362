// Package eventbus 实现事件总线
package eventbus

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	Clock clock.Clock `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	EventBus pkgif.EventBus
	Bus      *Bus
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideEventBus 提供注册了全部状态通道的 EventBus
func ProvideEventBus(p Params) Result {
	bus := NewBus(WithClock(p.Clock))
	bus.RegisterAll()
	return Result{
		EventBus: bus,
		Bus:      bus,
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC  fx.Lifecycle
	Bus *Bus
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Debug("事件总线已就绪", "channels", len(input.Bus.Channels()))
			return nil
		},
	})
}
