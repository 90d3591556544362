package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-nethealth/pkg/interfaces"
	"github.com/dep2p/go-nethealth/pkg/lib/log"
	"github.com/dep2p/go-nethealth/pkg/types"
)

var logger = log.Logger("core/metrics")

// Namespace 指标命名空间
const Namespace = "nethealth"

// ============================================================================
//                              Collector
// ============================================================================

// Collector 状态事件指标收集器
type Collector struct {
	transitions *prometheus.CounterVec
	lastSeen    *prometheus.GaugeVec

	mu   sync.Mutex
	subs []pkgif.Subscription
}

// NewCollector 创建收集器并注册到 reg
//
// reg 为 nil 时不注册，指标仍可通过 Collector 自身读取。
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "status_transitions_total",
			Help:      "Number of status events dispatched, by status.",
		}, []string{"status"}),
		lastSeen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_transition_timestamp_seconds",
			Help:      "Unix time of the most recent status event, by status.",
		}, []string{"status"}),
	}

	// 预先初始化所有标签，未出现的状态导出为 0
	for _, s := range types.AllStatuses() {
		c.transitions.WithLabelValues(s.String())
		c.lastSeen.WithLabelValues(s.String())
	}

	if reg != nil {
		if err := reg.Register(c.transitions); err != nil {
			return nil, fmt.Errorf("register transitions counter: %w", err)
		}
		if err := reg.Register(c.lastSeen); err != nil {
			reg.Unregister(c.transitions)
			return nil, fmt.Errorf("register last transition gauge: %w", err)
		}
	}
	return c, nil
}

// Attach 订阅总线上的所有状态
func (c *Collector) Attach(bus pkgif.EventBus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range bus.Channels() {
		sub, err := bus.Subscribe(s, c.record)
		if err != nil {
			return err
		}
		c.subs = append(c.subs, sub)
	}
	logger.Debug("指标收集器已挂载", "channels", len(c.subs))
	return nil
}

// Detach 取消所有订阅
func (c *Collector) Detach() error {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	var err error
	for _, sub := range subs {
		err = multierr.Append(err, sub.Close())
	}
	return err
}

// Transitions 返回某状态的事件计数
func (c *Collector) Transitions(status types.Status) float64 {
	return counterValue(c.transitions.WithLabelValues(status.String()))
}

func (c *Collector) record(evt types.StatusEvent) {
	label := evt.Status.String()
	c.transitions.WithLabelValues(label).Inc()
	c.lastSeen.WithLabelValues(label).Set(float64(evt.Timestamp.UnixNano()) / 1e9)
}
