package interfaces

import (
	"context"

	"github.com/dep2p/go-nethealth/pkg/types"
)

// Monitor 定义监控器公共契约
//
// Pause 是唯一的取消原语：已经在途的定时器照常触发，但在检查守卫时变为空操作。
type Monitor interface {
	// Name 返回监控器名称
	Name() types.MonitorName

	// Start 启动监控器
	Start(ctx context.Context) error

	// Stop 停止监控器并释放资源
	Stop() error

	// Pause 暂停监控
	Pause()

	// Resume 恢复监控
	Resume()
}

// ErrorSink 接收请求结果 (requestKey, statusCode)
type ErrorSink interface {
	HandleError(requestKey string, statusCode int)
}

// SampleSink 接收传输计时样本
type SampleSink interface {
	Observe(sample types.TransferSample) bool
}
