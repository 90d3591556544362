package nethealth

import "github.com/dep2p/go-nethealth/pkg/types"

// 公共错误定义
//
// 与 pkg/types 中的哨兵错误是同一个值，可直接用 errors.Is 比较。
var (
	// ────────────────────────────────────────────────────────────────────────
	// 引擎生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrEngineClosed 引擎已关闭
	ErrEngineClosed = types.ErrEngineClosed

	// ErrAlreadyStarted 引擎已启动
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ────────────────────────────────────────────────────────────────────────
	// 调用参数错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrUnknownStatus 未知状态
	ErrUnknownStatus = types.ErrUnknownStatus

	// ErrUnknownMonitor 未知监控器
	ErrUnknownMonitor = types.ErrUnknownMonitor

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = types.ErrInvalidConfig
)
