package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nethealth/internal/core/eventbus"
	"github.com/dep2p/go-nethealth/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

type record struct {
	status types.Status
	class  string
}

// eventLog 并发安全的事件记录，递减回调在 mock 时钟的 goroutine 中执行
type eventLog struct {
	mu     sync.Mutex
	events []record
}

func (l *eventLog) get() []record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]record, len(l.events))
	copy(out, l.events)
	return out
}

type fixture struct {
	monitor *Monitor
	clock   *clock.Mock
	log     *eventLog
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()

	bus := eventbus.NewBus()
	bus.RegisterAll()

	log := &eventLog{}
	for _, s := range []types.Status{types.StatusDegraded, types.StatusResolved} {
		_, err := bus.Subscribe(s, func(evt types.StatusEvent) {
			log.mu.Lock()
			defer log.mu.Unlock()
			log.events = append(log.events, record{evt.Status, evt.Target()})
		})
		require.NoError(t, err)
	}

	mock := clock.NewMock()
	m, err := NewMonitor(bus, cfg, WithClock(mock))
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop() })

	return &fixture{monitor: m, clock: mock, log: log}
}

// advance 推进时钟并等待所有到期递减执行完毕
func (f *fixture) advance(t *testing.T, d time.Duration, remaining int) {
	t.Helper()
	f.clock.Add(d)
	require.Eventually(t, func() bool {
		return f.monitor.Pending() == remaining
	}, time.Second, time.Millisecond)
}

// ============================================================================
//                              阈值与递减
// ============================================================================

func TestMonitor_DegradedThenResolved(t *testing.T) {
	f := newFixture(t, nil)

	f.monitor.HandleError("/api/a", 503)
	f.clock.Add(time.Second)
	f.monitor.HandleError("/api/b", 502)

	assert.Equal(t, []record{{types.StatusDegraded, "*"}}, f.log.get())
	assert.Equal(t, 2, f.monitor.Count("*"))

	// 只有第一个递减到期
	f.advance(t, 9*time.Second, 1)

	assert.Equal(t, []record{
		{types.StatusDegraded, "*"},
		{types.StatusResolved, "*"},
	}, f.log.get())
	assert.Equal(t, 1, f.monitor.Count("*"))

	// 第二个递减：1 -> 0 不再分发
	f.advance(t, time.Second, 0)
	assert.Len(t, f.log.get(), 2)
	assert.Equal(t, 0, f.monitor.Count("*"))
}

func TestMonitor_DegradedFiresOncePerCrossing(t *testing.T) {
	f := newFixture(t, nil)

	for i := 0; i < 5; i++ {
		f.monitor.HandleError("/x", 504)
	}
	assert.Equal(t, []record{{types.StatusDegraded, "*"}}, f.log.get())
	assert.Equal(t, 5, f.monitor.Count("*"))

	// 5 个递减同时到期：只在 2 -> 1 时恢复
	f.advance(t, 10*time.Second, 0)
	assert.Equal(t, []record{
		{types.StatusDegraded, "*"},
		{types.StatusResolved, "*"},
	}, f.log.get())

	// 再次越过阈值会再次降级
	f.monitor.HandleError("/x", 504)
	f.monitor.HandleError("/x", 504)
	assert.Len(t, f.log.get(), 3)
	assert.Equal(t, record{types.StatusDegraded, "*"}, f.log.get()[2])
}

func TestMonitor_ThresholdOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	f := newFixture(t, cfg)

	f.monitor.HandleError("/x", 503)
	assert.Equal(t, []record{{types.StatusDegraded, "*"}}, f.log.get())

	f.advance(t, 10*time.Second, 0)
	assert.Equal(t, record{types.StatusResolved, "*"}, f.log.get()[1])
}

func TestMonitor_UntrackedStatus(t *testing.T) {
	f := newFixture(t, nil)

	f.monitor.HandleError("/x", 500)
	f.monitor.HandleError("/x", 404)
	f.monitor.HandleError("/x", 200)

	assert.Equal(t, 0, f.monitor.Count("*"))
	assert.Equal(t, 0, f.monitor.Pending())
	assert.Empty(t, f.log.get())
}

func TestMonitor_CustomTrackedStatuses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrackedStatuses = []int{429}
	f := newFixture(t, cfg)

	f.monitor.HandleError("/x", 503)
	f.monitor.HandleError("/x", 429)

	assert.Equal(t, 1, f.monitor.Count("*"))
}

// ============================================================================
//                              端点类
// ============================================================================

func TestMonitor_ClassesFirstMatchWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classes = []ClassConfig{
		{Name: "api", Pattern: `^/api/`},
		{Name: "static", Pattern: `\.(js|css)$`},
	}
	f := newFixture(t, cfg)

	f.monitor.HandleError("/api/app.js", 503)
	f.monitor.HandleError("/assets/app.js", 503)
	f.monitor.HandleError("/assets/app.js", 503)

	assert.Equal(t, map[string]int{"api": 1, "static": 2}, f.monitor.Snapshot())
	assert.Equal(t, []record{{types.StatusDegraded, "static"}}, f.log.get())
}

func TestMonitor_UnmatchedKeyDropped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Classes = []ClassConfig{{Name: "api", Pattern: `^/api/`}}
	f := newFixture(t, cfg)

	f.monitor.HandleError("/other", 503)
	f.monitor.HandleError("/other", 503)

	assert.Equal(t, 0, f.monitor.Count("api"))
	assert.Equal(t, 0, f.monitor.Pending())
	assert.Empty(t, f.log.get())
}

func TestMonitor_CountUnknownClass(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, 0, f.monitor.Count("nope"))
}

// ============================================================================
//                              暂停与恢复
// ============================================================================

func TestMonitor_PauseIgnoresErrors(t *testing.T) {
	f := newFixture(t, nil)

	f.monitor.Pause()
	assert.True(t, f.monitor.Paused())

	f.monitor.HandleError("/x", 503)
	f.monitor.HandleError("/x", 503)

	assert.Equal(t, 0, f.monitor.Count("*"))
	assert.Equal(t, 0, f.monitor.Pending())
	assert.Empty(t, f.log.get())
}

func TestMonitor_PauseDropsInflightDecrement(t *testing.T) {
	f := newFixture(t, nil)

	f.monitor.HandleError("/x", 503)
	f.monitor.HandleError("/x", 503)
	f.monitor.Pause()

	// 递减在暂停期间到期，被丢弃
	f.advance(t, 10*time.Second, 0)
	assert.Equal(t, 2, f.monitor.Count("*"))
	assert.Equal(t, []record{{types.StatusDegraded, "*"}}, f.log.get())

	f.monitor.Resume()
	assert.False(t, f.monitor.Paused())
	assert.Equal(t, 0, f.monitor.Count("*"))
	assert.Len(t, f.log.get(), 1)
}

func TestMonitor_ResumeDiscardsStaleDecrements(t *testing.T) {
	f := newFixture(t, nil)

	f.monitor.HandleError("/x", 503)
	f.monitor.Pause()
	f.monitor.Resume()

	// 新纪元的一次失败
	f.monitor.HandleError("/x", 503)
	require.Equal(t, 1, f.monitor.Count("*"))

	// 两个递减同时到期，旧纪元的被丢弃，计数不会变负
	f.advance(t, 10*time.Second, 0)
	assert.Equal(t, 0, f.monitor.Count("*"))
	assert.Empty(t, f.log.get())
}

func TestMonitor_StopIgnoresErrors(t *testing.T) {
	f := newFixture(t, nil)

	f.monitor.HandleError("/x", 503)
	require.NoError(t, f.monitor.Stop())

	f.monitor.HandleError("/x", 503)
	f.advance(t, 10*time.Second, 0)

	assert.Equal(t, 1, f.monitor.Count("*"))
	assert.Empty(t, f.log.get())
}

func TestMonitor_PauseFromSubscriber(t *testing.T) {
	bus := eventbus.NewBus()
	bus.RegisterAll()

	m, err := NewMonitor(bus, nil, WithClock(clock.NewMock()))
	require.NoError(t, err)

	degraded := 0
	_, err = bus.Subscribe(types.StatusDegraded, func(types.StatusEvent) {
		degraded++
		m.Pause()
	})
	require.NoError(t, err)

	m.HandleError("/x", 503)
	m.HandleError("/x", 503)
	m.HandleError("/x", 503)

	assert.Equal(t, 1, degraded)
	assert.True(t, m.Paused())
	assert.Equal(t, 2, m.Count("*"))
}

func TestMonitor_HandleErrorFromSubscriber(t *testing.T) {
	bus := eventbus.NewBus()
	bus.RegisterAll()

	m, err := NewMonitor(bus, nil, WithClock(clock.NewMock()))
	require.NoError(t, err)

	degraded := 0
	_, err = bus.Subscribe(types.StatusDegraded, func(types.StatusEvent) {
		degraded++
		// 回调里发出的请求再次进入本监控器
		m.HandleError("/fallback", 200)
		m.HandleError("/fallback", 503)
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.HandleError("/x", 503)
		m.HandleError("/x", 503)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("HandleError 在 DEGRADED 回调中重入后没有返回")
	}

	assert.Equal(t, 1, degraded)
	assert.Equal(t, 3, m.Count("*"))
}

func TestMonitor_ReentrantTransitionsKeepOrder(t *testing.T) {
	bus := eventbus.NewBus()
	bus.RegisterAll()

	cfg := DefaultConfig()
	cfg.Classes = []ClassConfig{
		{Name: "a", Pattern: "^/a"},
		{Name: "b", Pattern: "^/b"},
	}
	cfg.FailureThreshold = 1
	m, err := NewMonitor(bus, cfg, WithClock(clock.NewMock()))
	require.NoError(t, err)

	var trace []string
	_, err = bus.Subscribe(types.StatusDegraded, func(evt types.StatusEvent) {
		trace = append(trace, evt.Target()+":begin")
		if evt.Target() == "a" {
			m.HandleError("/b", 503)
		}
		trace = append(trace, evt.Target()+":end")
	})
	require.NoError(t, err)

	m.HandleError("/a", 503)

	// b 的迁移在 a 的回调返回之后才送出
	assert.Equal(t, []string{"a:begin", "a:end", "b:begin", "b:end"}, trace)
}

func TestMonitor_StartResetsCounts(t *testing.T) {
	f := newFixture(t, nil)

	f.monitor.HandleError("/x", 503)
	require.NoError(t, f.monitor.Stop())
	require.Equal(t, 1, f.monitor.Count("*"))

	require.NoError(t, f.monitor.Start(context.Background()))
	assert.Equal(t, 0, f.monitor.Count("*"))

	// 上一次运行的递减到期后不影响新计数
	f.monitor.HandleError("/x", 503)
	f.advance(t, 10*time.Second, 0)
	assert.Equal(t, 0, f.monitor.Count("*"))
	assert.Empty(t, f.log.get())
}

// ============================================================================
//                              构造
// ============================================================================

func TestNewMonitor_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero threshold", func(c *Config) { c.FailureThreshold = 0 }},
		{"negative threshold", func(c *Config) { c.FailureThreshold = -1 }},
		{"no classes", func(c *Config) { c.Classes = nil }},
		{"bad regexp", func(c *Config) { c.Classes = []ClassConfig{{Name: "a", Pattern: "("}} }},
		{"duplicate names", func(c *Config) {
			c.Classes = []ClassConfig{{Name: "a", Pattern: "x"}, {Name: "a", Pattern: "y"}}
		}},
		{"empty pattern", func(c *Config) { c.Classes = []ClassConfig{{Name: "a"}} }},
		{"negative delay", func(c *Config) { c.DecrementDelay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			m, err := NewMonitor(eventbus.NewBus(), cfg)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidConfig)

			var ce *types.ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestConfig_ValidateAggregates(t *testing.T) {
	cfg := &Config{FailureThreshold: 0, DecrementDelay: -1}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.classes")
	assert.Contains(t, err.Error(), "service.failure_threshold")
	assert.Contains(t, err.Error(), "service.decrement_delay")
}

func TestMonitor_Name(t *testing.T) {
	m, err := NewMonitor(eventbus.NewBus(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.MonitorService, m.Name())
}
