// Package types 定义 nethealth 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              哨兵错误
// ============================================================================

var (
	// ErrUnknownStatus 未知状态
	ErrUnknownStatus = errors.New("unknown status")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnknownMonitor 未知监控器
	ErrUnknownMonitor = errors.New("unknown monitor")

	// ErrEngineClosed 引擎已关闭
	ErrEngineClosed = errors.New("engine closed")

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("already started")
)

// ============================================================================
//                              类型化错误
// ============================================================================

// UnknownStatusError 订阅或分发了未注册的状态
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown status %q", e.Status)
}

// Is 支持 errors.Is(err, ErrUnknownStatus)
func (e *UnknownStatusError) Is(target error) bool {
	return target == ErrUnknownStatus
}

// ConfigError 构造时发现的配置错误
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Is 支持 errors.Is(err, ErrInvalidConfig)
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError 创建配置错误
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
