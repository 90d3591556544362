// Package connectivity 实现链路连通性监控
package connectivity

import (
	"context"
	"sync"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
	"github.com/dep2p/go-nethealth/pkg/types"
)

var logger = log.Logger("core/connectivity")

// ============================================================================
//                              Monitor
// ============================================================================

// Monitor 链路连通性监控器
type Monitor struct {
	mu sync.Mutex

	bus    pkgif.EventBus
	source pkgif.LinkSource

	// cancel 当前注册的取消函数，nil 表示未挂载
	cancel func()

	// gen 挂载代数，旧挂载的迟到回调被丢弃
	gen uint64

	started bool
	paused  bool
}

// 确保实现接口
var _ pkgif.Monitor = (*Monitor)(nil)

// NewMonitor 创建连通性监控器
func NewMonitor(bus pkgif.EventBus, source pkgif.LinkSource) *Monitor {
	return &Monitor{
		bus:    bus,
		source: source,
	}
}

// Name 返回监控器名称
func (m *Monitor) Name() types.MonitorName {
	return types.MonitorConnectivity
}

// Start 挂载到信号源
func (m *Monitor) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}
	m.started = true
	if !m.paused {
		m.attachLocked()
	}

	logger.Info("连通性监控已启动", "paused", m.paused)
	return nil
}

// Stop 从信号源卸载
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}
	m.started = false
	m.detachLocked()

	logger.Info("连通性监控已停止")
	return nil
}

// Pause 暂停监控
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return
	}
	m.paused = true
	m.detachLocked()
	logger.Debug("连通性监控已暂停")
}

// Resume 恢复监控
func (m *Monitor) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.paused {
		return
	}
	m.paused = false
	if m.started {
		m.attachLocked()
	}
	logger.Debug("连通性监控已恢复")
}

// Attached 返回是否已挂载到信号源
func (m *Monitor) Attached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// ============================================================================
//                              内部方法
// ============================================================================

func (m *Monitor) attachLocked() {
	if m.cancel != nil || m.source == nil {
		return
	}
	m.gen++
	gen := m.gen
	m.cancel = m.source.Watch(func(up bool) {
		m.onLinkChange(gen, up)
	})
}

func (m *Monitor) detachLocked() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.cancel = nil
}

// onLinkChange 处理链路变化
func (m *Monitor) onLinkChange(gen uint64, up bool) {
	m.mu.Lock()
	live := m.cancel != nil && m.gen == gen
	m.mu.Unlock()
	if !live {
		return
	}

	status := types.StatusOffline
	if up {
		status = types.StatusOnline
	}

	logger.Info("链路状态变化", "status", status.String())
	if err := m.bus.Dispatch(status); err != nil {
		logger.Warn("分发链路事件失败", "status", status.String(), "error", err)
	}
}
