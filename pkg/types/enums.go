package types

import "strings"

// ============================================================================
//                              Status - 网络状态
// ============================================================================

// Status 网络状态
//
// 每个 Status 对应 EventBus 上的一个通道。
type Status int

const (
	// StatusOnline 链路上线
	StatusOnline Status = iota
	// StatusOffline 链路下线
	StatusOffline
	// StatusStable 连接恢复稳定
	StatusStable
	// StatusUnstable 连接不稳定
	StatusUnstable
	// StatusDegraded 服务降级
	StatusDegraded
	// StatusResolved 服务降级已解除
	StatusResolved

	statusCount
)

var statusNames = [statusCount]string{
	StatusOnline:   "online",
	StatusOffline:  "offline",
	StatusStable:   "stable",
	StatusUnstable: "unstable",
	StatusDegraded: "degraded",
	StatusResolved: "resolved",
}

// String 返回状态的字符串表示
func (s Status) String() string {
	if !s.IsValid() {
		return "unknown"
	}
	return statusNames[s]
}

// IsValid 检查是否为已定义的状态
func (s Status) IsValid() bool {
	return s >= 0 && s < statusCount
}

// MarshalText 实现 encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, &UnknownStatusError{Status: s.String()}
	}
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus 解析状态名称（不区分大小写）
func ParseStatus(name string) (Status, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == lower {
			return Status(i), nil
		}
	}
	return 0, &UnknownStatusError{Status: name}
}

// AllStatuses 按声明顺序返回所有状态
func AllStatuses() []Status {
	out := make([]Status, 0, statusCount)
	for s := Status(0); s < statusCount; s++ {
		out = append(out, s)
	}
	return out
}

// ============================================================================
//                              MonitorName - 监控器名称
// ============================================================================

// MonitorName 监控器名称
type MonitorName string

const (
	// MonitorConnectivity 链路连通性监控
	MonitorConnectivity MonitorName = "connectivity"
	// MonitorService 服务健康监控
	MonitorService MonitorName = "service"
	// MonitorStability 连接稳定性监控
	MonitorStability MonitorName = "stability"
)

// String 返回监控器名称
func (n MonitorName) String() string {
	return string(n)
}

// AllMonitors 返回所有监控器名称
func AllMonitors() []MonitorName {
	return []MonitorName{MonitorConnectivity, MonitorService, MonitorStability}
}
