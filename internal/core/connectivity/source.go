package connectivity

import (
	"sync"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// ============================================================================
//                              watcherSet
// ============================================================================

// watcherSet 回调集合，ManualSource 与 PollingSource 共用
type watcherSet struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]pkgif.LinkHandler
	order    []uint64
}

func (w *watcherSet) add(h pkgif.LinkHandler) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.handlers == nil {
		w.handlers = make(map[uint64]pkgif.LinkHandler)
	}
	w.nextID++
	id := w.nextID
	w.handlers[id] = h
	w.order = append(w.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { w.remove(id) })
	}
}

func (w *watcherSet) remove(id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.handlers, id)
	for i, v := range w.order {
		if v == id {
			w.order = append(w.order[:i:i], w.order[i+1:]...)
			break
		}
	}
}

// notify 按注册顺序通知所有回调
func (w *watcherSet) notify(up bool) {
	w.mu.RLock()
	handlers := make([]pkgif.LinkHandler, 0, len(w.order))
	for _, id := range w.order {
		handlers = append(handlers, w.handlers[id])
	}
	w.mu.RUnlock()

	for _, h := range handlers {
		h(up)
	}
}

func (w *watcherSet) len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// ============================================================================
//                              ManualSource
// ============================================================================

// ManualSource 手动注入的链路信号源
type ManualSource struct {
	watchers watcherSet
}

// 确保实现接口
var _ pkgif.LinkSource = (*ManualSource)(nil)

// NewManualSource 创建手动信号源
func NewManualSource() *ManualSource {
	return &ManualSource{}
}

// Watch 注册回调
func (s *ManualSource) Watch(handler pkgif.LinkHandler) func() {
	return s.watchers.add(handler)
}

// SetLinkUp 通知所有回调链路状态
//
// 每次调用都会通知，不做去重。
func (s *ManualSource) SetLinkUp(up bool) {
	s.watchers.notify(up)
}

// Watchers 返回当前回调数量
func (s *ManualSource) Watchers() int {
	return s.watchers.len()
}
