// Package eventbus 实现事件总线
package eventbus

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
	"github.com/dep2p/go-nethealth/pkg/types"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线
type Bus struct {
	mu sync.RWMutex

	// channels 状态通道映射
	channels map[types.Status]*channel

	// order 通道注册顺序
	order []types.Status

	clock clock.Clock
}

// channel 状态通道
type channel struct {
	status types.Status
	sinks  []*Subscription // 订阅者列表（注册顺序 = 调用顺序）
}

// 确保实现接口
var _ pkgif.EventBus = (*Bus)(nil)

// NewBus 创建新的事件总线
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		channels: make(map[types.Status]*channel),
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ============================================================================
// EventBus 接口实现
// ============================================================================

// RegisterChannel 注册状态通道
//
// 重复注册同一状态不会清空已有订阅。
func (b *Bus) RegisterChannel(status types.Status) error {
	if !status.IsValid() {
		return &types.UnknownStatusError{Status: status.String()}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.channels[status]; ok {
		return nil
	}
	b.channels[status] = &channel{status: status}
	b.order = append(b.order, status)
	return nil
}

// RegisterAll 注册所有状态通道
func (b *Bus) RegisterAll() {
	for _, s := range types.AllStatuses() {
		// AllStatuses 只包含有效状态，不会失败
		_ = b.RegisterChannel(s)
	}
}

// Subscribe 订阅状态
func (b *Bus) Subscribe(status types.Status, handler pkgif.Handler) (pkgif.Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[status]
	if !ok {
		return nil, &types.UnknownStatusError{Status: status.String()}
	}

	sub := &Subscription{
		bus:     b,
		status:  status,
		handler: handler,
	}
	ch.sinks = append(ch.sinks, sub)
	return sub, nil
}

// Dispatch 分发状态事件
//
// 回调在当前 goroutine 中按注册顺序同步调用。
func (b *Bus) Dispatch(status types.Status, args ...any) error {
	b.mu.RLock()
	ch, ok := b.channels[status]
	if !ok {
		b.mu.RUnlock()
		return &types.UnknownStatusError{Status: status.String()}
	}
	// 快照，回调中修改订阅列表不影响本次分发
	sinks := make([]*Subscription, len(ch.sinks))
	copy(sinks, ch.sinks)
	b.mu.RUnlock()

	evt := types.StatusEvent{
		ID:        uuid.New().String(),
		Status:    status,
		Args:      args,
		Timestamp: b.clock.Now(),
	}

	logger.Debug("分发状态事件",
		"status", status.String(),
		"subscribers", len(sinks),
		"args", len(args))

	for _, sub := range sinks {
		if sub.closed.Load() {
			continue
		}
		sub.handler(evt)
	}
	return nil
}

// Channels 按注册顺序返回已注册的状态
func (b *Bus) Channels() []types.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.Status, len(b.order))
	copy(out, b.order)
	return out
}

// HandlerCount 返回状态的订阅数，未注册返回 0
func (b *Bus) HandlerCount(status types.Status) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.channels[status]; ok {
		return len(ch.sinks)
	}
	return 0
}

// ============================================================================
// 内部方法
// ============================================================================

// removeSub 移除订阅
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[sub.status]
	if !ok {
		return
	}

	// 重新分配切片，避免影响正在进行的分发快照
	sinks := make([]*Subscription, 0, len(ch.sinks))
	for _, s := range ch.sinks {
		if s != sub {
			sinks = append(sinks, s)
		}
	}
	ch.sinks = sinks
}
