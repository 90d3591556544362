// Package interfaces 定义 nethealth 公共接口
//
// 本文件定义 EventBus 接口，提供按状态命名通道的发布订阅功能。
package interfaces

import "github.com/dep2p/go-nethealth/pkg/types"

// Handler 状态事件回调
//
// 回调在 Dispatch 的调用者 goroutine 中同步执行，不应长时间阻塞。
type Handler func(evt types.StatusEvent)

// EventBus 定义事件总线接口
//
// 每个 Status 对应一个通道，通道持有按注册顺序排列的回调列表。
type EventBus interface {
	// RegisterChannel 注册状态通道（幂等）
	RegisterChannel(status types.Status) error

	// Subscribe 订阅指定状态，未注册的状态返回 *types.UnknownStatusError
	Subscribe(status types.Status, handler Handler) (Subscription, error)

	// Dispatch 同步调用该状态的所有回调，args 原样透传
	Dispatch(status types.Status, args ...any) error

	// Channels 返回已注册的状态
	Channels() []types.Status
}

// Subscription 定义订阅句柄
type Subscription interface {
	// Status 返回订阅的状态
	Status() types.Status

	// Close 取消订阅（可重复调用）
	Close() error
}
