package connectivity

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// fakeLink 可控的链路状态
type fakeLink struct {
	up atomic.Bool
}

func (f *fakeLink) probe() bool { return f.up.Load() }

// changeLog 并发安全的变化记录
type changeLog struct {
	mu      sync.Mutex
	changes []bool
}

func (c *changeLog) add(up bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, up)
}

func (c *changeLog) get() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]bool, len(c.changes))
	copy(out, c.changes)
	return out
}

func TestPollingSource_EmitsOnlyOnTransitions(t *testing.T) {
	mock := clock.NewMock()
	link := &fakeLink{}
	link.up.Store(true)

	src := NewPollingSource(&Config{PollInterval: time.Second},
		WithPollingClock(mock),
		WithLinkProbe(link.probe))

	log := &changeLog{}
	src.Watch(log.add)

	require.NoError(t, src.Start(context.Background()))
	defer src.Stop()
	assert.True(t, src.Online())

	// 状态未变化：不通知
	mock.Add(time.Second)
	mock.Add(time.Second)
	assert.Empty(t, log.get())

	link.up.Store(false)
	mock.Add(time.Second)
	require.Eventually(t, func() bool {
		return len(log.get()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{false}, log.get())

	link.up.Store(true)
	mock.Add(time.Second)
	require.Eventually(t, func() bool {
		return len(log.get()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{false, true}, log.get())
}

func TestPollingSource_CheckDirect(t *testing.T) {
	link := &fakeLink{}
	src := NewPollingSource(nil, WithLinkProbe(link.probe))

	log := &changeLog{}
	cancel := src.Watch(log.add)

	src.check()
	assert.Empty(t, log.get())

	link.up.Store(true)
	src.check()
	assert.Equal(t, []bool{true}, log.get())

	cancel()
	cancel()
	link.up.Store(false)
	src.check()
	assert.Equal(t, []bool{true}, log.get())
}

func TestPollingSource_StartStopIdempotent(t *testing.T) {
	src := NewPollingSource(nil, WithPollingClock(clock.NewMock()), WithLinkProbe(func() bool { return true }))

	require.NoError(t, src.Start(context.Background()))
	require.NoError(t, src.Start(context.Background()))
	require.NoError(t, src.Stop())
	require.NoError(t, src.Stop())
}

func TestPollingSource_InvalidConfigFallsBack(t *testing.T) {
	src := NewPollingSource(&Config{PollInterval: 0})
	assert.Equal(t, DefaultConfig().PollInterval, src.config.PollInterval)
}

func TestPollingSource_DrivesMonitor(t *testing.T) {
	bus, rec := newTestBus(t)
	link := &fakeLink{}
	link.up.Store(true)
	src := NewPollingSource(nil, WithLinkProbe(link.probe))

	m := NewMonitor(bus, src)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	// 未启动时初始状态为离线
	src.check()
	link.up.Store(false)
	src.check()
	src.check()

	assert.Equal(t, []types.Status{types.StatusOnline, types.StatusOffline}, rec.statuses)
}

func TestHasGlobalUnicast(t *testing.T) {
	tests := []struct {
		name  string
		addrs []net.Addr
		want  bool
	}{
		{"empty", nil, false},
		{"loopback", []net.Addr{&net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}}, false},
		{"link-local v6", []net.Addr{&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)}}, false},
		{"private v4", []net.Addr{&net.IPNet{IP: net.ParseIP("192.168.1.10"), Mask: net.CIDRMask(24, 32)}}, true},
		{"ipaddr", []net.Addr{&net.IPAddr{IP: net.ParseIP("2001:db8::1")}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasGlobalUnicast(tt.addrs))
		})
	}
}

func TestConfig_Validate_Polling(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{}).Validate())
}
