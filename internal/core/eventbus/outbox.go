package eventbus

import (
	"sync"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/types"
)

// ============================================================================
//                              Outbox
// ============================================================================

// Outbox 单个发布者的有序分发队列
//
// 发布者在自己的锁内 Enqueue 计算出的状态迁移，释放锁后调用 Drain。
// 同一时刻只有一个 goroutine 在 Drain 中调用回调，回调期间不持有任何锁；
// 回调中再次触发的迁移只入队，由正在分发的 goroutine 按 FIFO 顺序送出。
type Outbox struct {
	bus    pkgif.EventBus
	onFail func(status types.Status, args []any, err error)

	mu       sync.Mutex
	queue    []outboxItem
	draining bool
}

type outboxItem struct {
	status types.Status
	args   []any
}

// NewOutbox 创建分发队列，onFail 可为 nil
func NewOutbox(bus pkgif.EventBus, onFail func(status types.Status, args []any, err error)) *Outbox {
	return &Outbox{bus: bus, onFail: onFail}
}

// Enqueue 追加一个待分发的状态迁移
func (o *Outbox) Enqueue(status types.Status, args ...any) {
	o.mu.Lock()
	o.queue = append(o.queue, outboxItem{status: status, args: args})
	o.mu.Unlock()
}

// Drain 分发队列中的全部迁移
//
// 已有 goroutine 在分发时立即返回，剩余迁移由它送出。
func (o *Outbox) Drain() {
	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	defer func() {
		// 回调 panic 时释放分发权，避免之后的迁移永远滞留
		if r := recover(); r != nil {
			o.mu.Lock()
			o.draining = false
			o.mu.Unlock()
			panic(r)
		}
	}()

	for len(o.queue) > 0 {
		item := o.queue[0]
		o.queue[0] = outboxItem{}
		o.queue = o.queue[1:]
		o.mu.Unlock()

		if err := o.bus.Dispatch(item.status, item.args...); err != nil && o.onFail != nil {
			o.onFail(item.status, item.args, err)
		}

		o.mu.Lock()
	}
	o.queue = nil
	o.draining = false
	o.mu.Unlock()
}

// Len 返回待分发的迁移数量
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}
