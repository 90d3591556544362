// Package service 实现服务健康监控
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-nethealth/internal/core/eventbus"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
	"github.com/dep2p/go-nethealth/pkg/types"
)

var logger = log.Logger("core/service")

// ============================================================================
//                              Monitor
// ============================================================================

// Monitor 服务健康监控器
type Monitor struct {
	mu sync.Mutex

	// outbox 按计算顺序分发迁移，回调期间不持有 mu
	outbox *eventbus.Outbox

	config *Config
	clock  clock.Clock

	classes []*class
	byName  map[string]*class
	matcher *matcher
	tracked map[int]struct{}

	paused bool
	closed bool

	// epoch 每次 Start / Stop / Resume 递增，旧纪元的递减被丢弃
	epoch uint64

	// pending 已调度但尚未触发的递减数量
	pending atomic.Int64

	dropLog rate.Sometimes
}

// 确保实现接口
var (
	_ pkgif.Monitor   = (*Monitor)(nil)
	_ pkgif.ErrorSink = (*Monitor)(nil)
)

// Option 监控器选项
type Option func(*Monitor)

// WithClock 设置定时器时钟
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		if c != nil {
			m.clock = c
		}
	}
}

// NewMonitor 创建服务健康监控器
//
// 配置无效时返回 *types.ConfigError（可能多个，由 multierr 合并）。
func NewMonitor(bus pkgif.EventBus, config *Config, opts ...Option) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	classes, err := compileClasses(config.Classes)
	if err != nil {
		return nil, types.NewConfigError("service.classes", "%v", err)
	}
	matcher, err := newMatcher(classes, config.MatchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create match cache: %w", err)
	}

	m := &Monitor{
		config:  config,
		clock:   clock.New(),
		classes: classes,
		byName:  make(map[string]*class, len(classes)),
		matcher: matcher,
		tracked: make(map[int]struct{}, len(config.TrackedStatuses)),
		dropLog: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	m.outbox = eventbus.NewOutbox(bus, func(status types.Status, args []any, err error) {
		logger.Warn("分发服务健康事件失败", "status", status.String(), "args", args, "error", err)
	})
	for _, c := range classes {
		m.byName[c.name] = c
	}
	for _, code := range config.TrackedStatuses {
		m.tracked[code] = struct{}{}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name 返回监控器名称
func (m *Monitor) Name() types.MonitorName {
	return types.MonitorService
}

// Start 启动监控器
//
// 计数从 0 开始，上一次运行留下的计数被丢弃。
func (m *Monitor) Start(_ context.Context) error {
	m.mu.Lock()
	m.closed = false
	m.resetLocked()
	m.mu.Unlock()

	logger.Info("服务健康监控已启动",
		"classes", len(m.classes),
		"threshold", m.config.FailureThreshold,
		"decrement_delay", m.config.DecrementDelay)
	return nil
}

// Stop 停止监控器
//
// 在途递减照常触发，但不再修改计数；计数保持停止时的值直到下次 Start。
func (m *Monitor) Stop() error {
	m.mu.Lock()
	m.closed = true
	m.epoch++
	m.mu.Unlock()

	logger.Info("服务健康监控已停止")
	return nil
}

// Pause 暂停监控
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paused = true
	logger.Debug("服务健康监控已暂停")
}

// Resume 恢复监控并清零所有计数
func (m *Monitor) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()
	m.paused = false
	logger.Debug("服务健康监控已恢复", "epoch", m.epoch)
}

// HandleError 处理一次请求结果
//
// 可以在本监控器分发的回调中调用，此时产生的迁移在当前回调返回后送出。
func (m *Monitor) HandleError(requestKey string, statusCode int) {
	m.mu.Lock()
	if m.paused || m.closed {
		m.mu.Unlock()
		return
	}
	if _, ok := m.tracked[statusCode]; !ok {
		m.mu.Unlock()
		m.logDrop("untracked status", requestKey, statusCode)
		return
	}

	c := m.matcher.resolve(requestKey)
	if c == nil {
		m.mu.Unlock()
		m.logDrop("no matching class", requestKey, statusCode)
		return
	}

	c.count++
	if c.count == m.config.FailureThreshold {
		logger.Info("端点类降级", "class", c.name, "status_code", statusCode)
		m.outbox.Enqueue(types.StatusDegraded, c.name)
	}
	m.scheduleDecrementLocked(c)
	m.mu.Unlock()

	m.outbox.Drain()
}

// Count 返回端点类当前计数，未知类返回 0
func (m *Monitor) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.byName[name]; ok {
		return c.count
	}
	return 0
}

// Snapshot 返回所有端点类的计数
func (m *Monitor) Snapshot() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int, len(m.classes))
	for _, c := range m.classes {
		out[c.name] = c.count
	}
	return out
}

// Pending 返回尚未触发的递减数量
func (m *Monitor) Pending() int {
	return int(m.pending.Load())
}

// Paused 返回是否暂停
func (m *Monitor) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// ============================================================================
//                              内部方法
// ============================================================================

// scheduleDecrementLocked 调度一次延迟递减，调用者持有 mu
func (m *Monitor) scheduleDecrementLocked(c *class) {
	epoch := m.epoch
	m.pending.Add(1)
	m.clock.AfterFunc(m.config.DecrementDelay, func() {
		defer m.pending.Add(-1)
		m.decrement(c, epoch)
	})
}

// decrement 递减触发
func (m *Monitor) decrement(c *class, epoch uint64) {
	m.mu.Lock()
	if m.paused || epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	c.count--
	if c.count == m.config.FailureThreshold-1 {
		logger.Info("端点类恢复", "class", c.name)
		m.outbox.Enqueue(types.StatusResolved, c.name)
	}
	m.mu.Unlock()

	m.outbox.Drain()
}

// resetLocked 清零计数并使在途递减失效，调用者持有 mu
func (m *Monitor) resetLocked() {
	for _, c := range m.classes {
		c.count = 0
	}
	m.epoch++
}

func (m *Monitor) logDrop(reason, key string, code int) {
	m.dropLog.Do(func() {
		logger.Debug("丢弃请求结果", "reason", reason, "key", key, "status_code", code)
	})
}
