package nethealth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-nethealth/config"
	"github.com/dep2p/go-nethealth/internal/core/connectivity"
	"github.com/dep2p/go-nethealth/internal/core/instrument"
	"github.com/dep2p/go-nethealth/internal/core/metrics"
	"github.com/dep2p/go-nethealth/internal/core/service"
	"github.com/dep2p/go-nethealth/internal/core/stability"
	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
	"github.com/dep2p/go-nethealth/pkg/types"
)

var logger = log.Logger("nethealth")

// Unsubscribe 取消一组订阅
type Unsubscribe func() error

// Engine 网络健康引擎
//
// Engine 持有事件总线和全部监控器，是用户交互的主入口。
// 所有方法都是并发安全的。
type Engine struct {
	mu sync.Mutex

	app    *fx.App
	config *config.Config

	bus          pkgif.EventBus
	connectivity *connectivity.Monitor
	service      *service.Monitor
	stability    *stability.Monitor
	collector    *metrics.Collector

	monitors map[types.MonitorName]pkgif.Monitor

	// subs 通过引擎建立的订阅，Stop 时统一关闭
	subs []pkgif.Subscription

	started bool
	closed  bool
}

// New 创建引擎
//
// 配置在装配前校验，任何字段无效都返回 ErrInvalidConfig。
func New(opts ...Option) (*Engine, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &Engine{
		config:   o.config,
		monitors: make(map[types.MonitorName]pkgif.Monitor),
	}
	app := buildFxApp(e, o)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	e.app = app
	return e, nil
}

// inject 接收 Fx 容器构造好的组件
func (e *Engine) inject(c engineComponents) {
	e.bus = c.Bus
	e.connectivity = c.Connectivity
	e.service = c.Service
	e.stability = c.Stability
	e.collector = c.Collector
	for _, m := range c.Monitors {
		e.monitors[m.Name()] = m
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动全部监控器
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.started {
		return ErrAlreadyStarted
	}
	if err := e.app.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	e.started = true

	logger.Info("引擎已启动",
		"monitors", len(e.monitors),
		"stabilityActive", e.stability != nil && e.stability.Active(),
		"metrics", e.collector != nil)
	return nil
}

// Stop 停止全部监控器并关闭通过引擎建立的订阅
//
// 可重复调用，第二次起直接返回 nil。停止后的引擎不能再启动。
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	started := e.started
	subs := e.subs
	e.subs = nil
	// 回调可能在停止期间调用 On，这里不能持锁等待监控器退出
	e.mu.Unlock()

	var err error
	if started {
		err = e.app.Stop(ctx)
	}
	for _, sub := range subs {
		err = multierr.Append(err, sub.Close())
	}

	logger.Info("引擎已停止")
	return err
}

// ════════════════════════════════════════════════════════════════════════════
// 订阅
// ════════════════════════════════════════════════════════════════════════════

// On 订阅指定状态
func (e *Engine) On(status types.Status, handler pkgif.Handler) (pkgif.Subscription, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	return e.subscribeLocked(status, handler)
}

// OnName 按名称订阅状态，名称不区分大小写
func (e *Engine) OnName(name string, handler pkgif.Handler) (pkgif.Subscription, error) {
	status, err := types.ParseStatus(name)
	if err != nil {
		return nil, err
	}
	return e.On(status, handler)
}

// All 用同一个回调订阅所有状态
//
// 事件中的 Status 字段标识具体状态。任一订阅失败时已建立的订阅会被回滚。
func (e *Engine) All(handler pkgif.Handler) (Unsubscribe, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}

	var subs []pkgif.Subscription
	for _, status := range e.bus.Channels() {
		sub, err := e.subscribeLocked(status, handler)
		if err != nil {
			for _, s := range subs {
				_ = s.Close()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}

	return func() error {
		var err error
		for _, s := range subs {
			err = multierr.Append(err, s.Close())
		}
		return err
	}, nil
}

func (e *Engine) subscribeLocked(status types.Status, handler pkgif.Handler) (pkgif.Subscription, error) {
	sub, err := e.bus.Subscribe(status, handler)
	if err != nil {
		return nil, err
	}
	e.subs = append(e.subs, sub)
	return sub, nil
}

// ════════════════════════════════════════════════════════════════════════════
// 信号输入
// ════════════════════════════════════════════════════════════════════════════

// ReportError 上报一次请求结果，转交服务健康监控器
func (e *Engine) ReportError(requestKey string, statusCode int) {
	e.service.HandleError(requestKey, statusCode)
}

// Observe 上报一个传输样本，转交稳定性监控器
//
// 稳定性监控被禁用、处于主动模式或样本不可用时返回 false。
func (e *Engine) Observe(sample types.TransferSample) bool {
	if e.stability == nil {
		return false
	}
	return e.stability.Observe(sample)
}

// Transport 返回自动上报请求结果和传输样本的 RoundTripper
//
// base 为 nil 时使用 http.DefaultTransport。状态回调中可以继续使用它发请求，
// 回调里触发的迁移在当前回调返回后按顺序送出。
func (e *Engine) Transport(base http.RoundTripper) http.RoundTripper {
	opts := []instrument.Option{instrument.WithErrorSink(e.service)}
	if e.stability != nil && !e.stability.Active() {
		opts = append(opts, instrument.WithSampleSink(e.stability))
	}
	return instrument.NewTransport(base, opts...)
}

// ════════════════════════════════════════════════════════════════════════════
// 暂停与恢复
// ════════════════════════════════════════════════════════════════════════════

// Pause 暂停指定监控器，不带参数时暂停全部
//
// 任一名称未知时返回 ErrUnknownMonitor，且不暂停任何监控器。
func (e *Engine) Pause(names ...types.MonitorName) error {
	targets, err := e.resolve(names)
	if err != nil {
		return err
	}
	for _, m := range targets {
		m.Pause()
	}
	logger.Debug("监控器已暂停", "count", len(targets))
	return nil
}

// Resume 恢复指定监控器，不带参数时恢复全部
func (e *Engine) Resume(names ...types.MonitorName) error {
	targets, err := e.resolve(names)
	if err != nil {
		return err
	}
	for _, m := range targets {
		m.Resume()
	}
	logger.Debug("监控器已恢复", "count", len(targets))
	return nil
}

// resolve 把名称解析为监控器，保持 AllMonitors 的顺序
func (e *Engine) resolve(names []types.MonitorName) ([]pkgif.Monitor, error) {
	if len(names) == 0 {
		names = e.Monitors()
	}
	targets := make([]pkgif.Monitor, 0, len(names))
	for _, name := range names {
		m, ok := e.monitors[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMonitor, name)
		}
		targets = append(targets, m)
	}
	return targets, nil
}

// ════════════════════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════════════════════

// Monitors 返回已装配的监控器名称
func (e *Engine) Monitors() []types.MonitorName {
	names := make([]types.MonitorName, 0, len(e.monitors))
	for _, name := range types.AllMonitors() {
		if _, ok := e.monitors[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Config 返回配置副本
func (e *Engine) Config() *config.Config {
	return e.config.Clone()
}

// Stable 返回当前是否稳定；稳定性监控被禁用时恒为 true
func (e *Engine) Stable() bool {
	if e.stability == nil {
		return true
	}
	return e.stability.IsStable()
}

// FailureCounts 返回各端点类的当前失败计数
func (e *Engine) FailureCounts() map[string]int {
	return e.service.Snapshot()
}
