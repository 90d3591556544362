// Package types 定义 nethealth 公共类型
//
// 本文件定义事件相关类型。
package types

import (
	"math"
	"time"
)

// ============================================================================
//                              StatusEvent - 状态事件
// ============================================================================

// StatusEvent 状态变更事件
//
// Args 为 Dispatch 时传入的参数，原样透传给订阅者。
type StatusEvent struct {
	// ID 事件唯一标识
	ID string

	// Status 事件状态
	Status Status

	// Args 附加参数（DEGRADED/RESOLVED 的第一个参数为端点类名称）
	Args []any

	// Timestamp 事件时间
	Timestamp time.Time
}

// Target 返回第一个字符串参数
//
// 对于服务健康事件，即端点类名称；没有时返回空字符串。
func (e StatusEvent) Target() string {
	if len(e.Args) == 0 {
		return ""
	}
	s, _ := e.Args[0].(string)
	return s
}

// ============================================================================
//                              TransferSample - 传输样本
// ============================================================================

// TransferSample 单次传输的计时样本
type TransferSample struct {
	// Timestamp 样本时间
	Timestamp time.Time

	// Duration 响应开始到响应结束的耗时
	Duration time.Duration

	// TransferBytes 传输字节数（0 表示未知，如跨域资源）
	TransferBytes int64
}

// Valid 检查样本是否可用于测速
func (s TransferSample) Valid() bool {
	return s.Duration > 0 && s.TransferBytes > 0
}

// DurationMs 返回毫秒耗时
func (s TransferSample) DurationMs() float64 {
	return float64(s.Duration) / float64(time.Millisecond)
}

// Speed 返回传输速度（字节/毫秒）
//
// 无效样本返回 0。
func (s TransferSample) Speed() float64 {
	if !s.Valid() {
		return 0
	}
	speed := float64(s.TransferBytes) / s.DurationMs()
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return 0
	}
	return speed
}
