// Package stability 实现网络稳定性监控
package stability

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-nethealth/internal/core/eventbus"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
	"github.com/dep2p/go-nethealth/pkg/types"
)

var logger = log.Logger("core/stability")

// ============================================================================
//                              Monitor
// ============================================================================

// Monitor 网络稳定性监控器
type Monitor struct {
	mu sync.Mutex

	// outbox 按计算顺序分发迁移，回调期间不持有 mu
	outbox *eventbus.Outbox

	config *Config
	clock  clock.Clock
	prober pkgif.Prober

	// 被动模式
	window *Window

	isStable bool

	// 主动模式
	streak int

	// gen 循环代数，Resume / Stop 使旧循环退出
	gen uint64

	started bool
	paused  bool

	// loopCtx 探测循环上下文，Stop 时取消
	loopCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// 确保实现接口
var (
	_ pkgif.Monitor    = (*Monitor)(nil)
	_ pkgif.SampleSink = (*Monitor)(nil)
)

// Option 监控器选项
type Option func(*Monitor)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithProber 设置探测器，覆盖按 scheme 选择的默认探测器
func WithProber(p pkgif.Prober) Option {
	return func(m *Monitor) {
		if p != nil {
			m.prober = p
		}
	}
}

// NewMonitor 创建稳定性监控器
func NewMonitor(bus pkgif.EventBus, config *Config, opts ...Option) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		config:   config,
		clock:    clock.New(),
		window:   NewWindow(config.MaxBufferSize),
		isStable: true,
	}
	m.outbox = eventbus.NewOutbox(bus, func(status types.Status, _ []any, err error) {
		logger.Warn("分发稳定性事件失败", "status", status.String(), "error", err)
	})
	for _, opt := range opts {
		opt(m)
	}

	if config.Active() && m.prober == nil {
		p, err := ProberFor(config.Resource)
		if err != nil {
			return nil, err
		}
		m.prober = p
	}
	return m, nil
}

// Name 返回监控器名称
func (m *Monitor) Name() types.MonitorName {
	return types.MonitorStability
}

// Active 是否为主动模式
func (m *Monitor) Active() bool {
	return m.config.Active()
}

// Start 启动监控器
//
// 主动模式下启动探测循环，循环不随 ctx 取消，只随 Pause / Stop 退出。
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}
	m.started = true

	if m.Active() {
		m.loopCtx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
		if !m.paused {
			m.startLoopLocked()
		}
		logger.Info("稳定性监控已启动（主动模式）",
			"resource", m.config.Resource,
			"interval", m.config.Interval,
			"duration_threshold", m.config.DurationThreshold,
			"request_threshold", m.config.RequestThreshold)
	} else {
		logger.Info("稳定性监控已启动（被动模式）",
			"max_buffer_size", m.config.MaxBufferSize,
			"speed_threshold", m.config.SpeedThreshold)
	}
	return nil
}

// Stop 停止监控器并等待探测循环退出
//
// 不能在本监控器分发的回调中调用。
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = false
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
		m.loopCtx = nil
	}
	m.mu.Unlock()

	m.wg.Wait()
	logger.Info("稳定性监控已停止")
	return nil
}

// Pause 暂停监控
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paused = true
	logger.Debug("稳定性监控已暂停")
}

// Resume 恢复监控
//
// 被动模式清空窗口并保留稳定状态；主动模式清零慢请求计数并启动新循环。
func (m *Monitor) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.paused {
		return
	}
	m.paused = false

	if !m.Active() {
		m.window.Reset()
		logger.Debug("稳定性监控已恢复", "stable", m.isStable)
		return
	}

	m.streak = 0
	m.isStable = true
	m.gen++
	if m.started {
		m.startLoopLocked()
	}
	logger.Debug("稳定性监控已恢复", "gen", m.gen)
}

// IsStable 返回当前稳定状态
func (m *Monitor) IsStable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isStable
}

// Streak 返回连续慢请求计数
func (m *Monitor) Streak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streak
}

// ============================================================================
//                              被动模式
// ============================================================================

// Observe 接收一个传输样本
//
// 返回样本是否进入窗口。无效样本、主动模式、未启动或暂停时返回 false。
// 可以在本监控器分发的回调中调用，此时产生的迁移在当前回调返回后送出。
func (m *Monitor) Observe(sample types.TransferSample) bool {
	if !sample.Valid() {
		return false
	}

	m.mu.Lock()
	if m.Active() || !m.started || m.paused {
		m.mu.Unlock()
		return false
	}

	mean, ready := m.window.Push(sample.Speed())
	var (
		status   types.Status
		changed  bool
		isStable = m.isStable
	)
	if ready {
		below := mean < m.config.SpeedThreshold
		switch {
		case isStable && below:
			m.isStable, status, changed = false, types.StatusUnstable, true
		case !isStable && !below:
			m.isStable, status, changed = true, types.StatusStable, true
		}
	}
	if changed {
		logger.Info("传输速度状态变化",
			"status", status.String(),
			"mean_speed", mean,
			"threshold", m.config.SpeedThreshold)
		m.outbox.Enqueue(status)
	}
	m.mu.Unlock()

	m.outbox.Drain()
	return true
}

// ============================================================================
//                              主动模式
// ============================================================================

// startLoopLocked 启动新一代探测循环，调用者持有 mu
func (m *Monitor) startLoopLocked() {
	m.wg.Add(1)
	go m.loop(m.loopCtx, m.gen)
}

// loop 探测循环
func (m *Monitor) loop(ctx context.Context, gen uint64) {
	defer m.wg.Done()

	for {
		if !m.current(gen) || ctx.Err() != nil {
			return
		}

		if !m.cycle(ctx, gen) {
			continue
		}

		timer := m.clock.Timer(m.config.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// current 循环是否仍然有效
func (m *Monitor) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.paused && m.gen == gen
}

// cycle 执行一轮探测与分类
//
// 返回下一轮之前是否需要等待 Interval。
func (m *Monitor) cycle(ctx context.Context, gen uint64) bool {
	probeCtx := ctx
	if m.config.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, m.config.ProbeTimeout)
		defer cancel()
	}

	start := m.clock.Now()
	ok := m.prober.Probe(probeCtx, m.config.Resource)
	elapsed := m.clock.Since(start)

	if !ok {
		// 失败的探测对分类不可见
		logger.Debug("探测失败，跳过本轮", "resource", m.config.Resource)
		return true
	}
	return m.classify(gen, elapsed)
}

// classify 按耗时更新慢请求计数
func (m *Monitor) classify(gen uint64, elapsed time.Duration) bool {
	m.mu.Lock()
	if m.paused || m.gen != gen {
		m.mu.Unlock()
		return true
	}

	var (
		status  types.Status
		changed bool
		wait    = true
	)
	threshold := m.config.RequestThreshold
	if elapsed > m.config.DurationThreshold {
		m.streak++
		switch {
		case m.streak < threshold:
			wait = false
		case m.streak == threshold:
			m.isStable, status, changed = false, types.StatusUnstable, true
		}
	} else {
		if m.streak >= threshold {
			m.isStable, status, changed = true, types.StatusStable, true
		}
		m.streak = 0
	}
	streak := m.streak
	logger.Debug("探测完成", "elapsed", elapsed, "streak", streak)
	if changed {
		logger.Info("探测延迟状态变化",
			"status", status.String(),
			"elapsed", elapsed,
			"streak", streak)
		m.outbox.Enqueue(status)
	}
	m.mu.Unlock()

	m.outbox.Drain()
	return wait
}
