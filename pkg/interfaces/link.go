// Package interfaces 定义 nethealth 公共接口
//
// 本文件定义链路状态信号源接口，对应 internal/core/connectivity 实现。
package interfaces

// LinkHandler 链路状态回调，up=true 表示链路上线
type LinkHandler func(up bool)

// LinkSource 链路状态信号源
//
// 平台链路上/下线通知的抽象（系统网卡轮询、移动端回调等）。
type LinkSource interface {
	// Watch 注册回调，返回取消函数
	//
	// 取消函数可以重复调用。
	Watch(handler LinkHandler) (cancel func())
}
