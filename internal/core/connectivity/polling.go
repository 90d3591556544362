package connectivity

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
)

// ============================================================================
//                              PollingSource
// ============================================================================

// PollingSource 基于 net.Interfaces() 轮询的链路信号源
//
// 只在在线状态翻转时通知回调。
type PollingSource struct {
	config *Config
	clock  clock.Clock

	// linkUp 读取当前在线状态，测试中可替换
	linkUp func() bool

	watchers watcherSet

	mu   sync.Mutex
	last bool

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// 确保实现接口
var _ pkgif.LinkSource = (*PollingSource)(nil)

// PollingOption 轮询信号源选项
type PollingOption func(*PollingSource)

// WithPollingClock 设置时钟
func WithPollingClock(c clock.Clock) PollingOption {
	return func(s *PollingSource) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLinkProbe 替换在线状态读取函数
func WithLinkProbe(fn func() bool) PollingOption {
	return func(s *PollingSource) {
		if fn != nil {
			s.linkUp = fn
		}
	}
}

// NewPollingSource 创建轮询信号源
func NewPollingSource(config *Config, opts ...PollingOption) *PollingSource {
	if config == nil || config.Validate() != nil {
		config = DefaultConfig()
	}
	s := &PollingSource{
		config: config,
		clock:  clock.New(),
		linkUp: SystemLinkUp,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch 注册回调
func (s *PollingSource) Watch(handler pkgif.LinkHandler) func() {
	return s.watchers.add(handler)
}

// Start 启动轮询
func (s *PollingSource) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	s.last = s.linkUp()
	s.mu.Unlock()

	// 使用独立上下文：fx OnStart 的 ctx 在启动完成后即取消
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	ticker := s.clock.Ticker(s.config.PollInterval)
	s.wg.Add(1)
	go s.pollLoop(loopCtx, ticker)

	logger.Info("链路轮询已启动",
		"poll_interval", s.config.PollInterval,
		"online", s.Online())
	return nil
}

// Stop 停止轮询
func (s *PollingSource) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	logger.Info("链路轮询已停止")
	return nil
}

// Online 返回最近一次读取的在线状态
func (s *PollingSource) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// pollLoop 轮询循环
func (s *PollingSource) pollLoop(ctx context.Context, ticker *clock.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check()
		}
	}
}

// check 读取一次在线状态，翻转时通知
func (s *PollingSource) check() {
	up := s.linkUp()

	s.mu.Lock()
	changed := up != s.last
	s.last = up
	s.mu.Unlock()

	if !changed {
		return
	}

	logger.Debug("检测到链路状态翻转", "online", up)
	s.watchers.notify(up)
}

// ============================================================================
//                              系统接口读取
// ============================================================================

// SystemLinkUp 检查系统是否存在可用的网络接口
func SystemLinkUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		logger.Debug("读取网络接口失败", "error", err)
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		if hasGlobalUnicast(addrs) {
			return true
		}
	}
	return false
}

// hasGlobalUnicast 地址列表中是否存在全局单播地址
func hasGlobalUnicast(addrs []net.Addr) bool {
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip != nil && ip.IsGlobalUnicast() {
			return true
		}
	}
	return false
}
