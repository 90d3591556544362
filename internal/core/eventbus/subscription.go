// Package eventbus 实现事件总线
package eventbus

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/types"
)

// ErrNilHandler 回调为空
var ErrNilHandler = errors.New("eventbus: nil handler")

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 订阅
type Subscription struct {
	bus       *Bus
	status    types.Status
	handler   interfaces.Handler
	closeOnce sync.Once
	closed    atomic.Bool
}

// Status 返回订阅的状态
func (s *Subscription) Status() types.Status {
	return s.status
}

// Close 取消订阅
//
// Close 是并发安全的，可以多次调用。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.bus.removeSub(s)
	})
	return nil
}
