// Package connectivity 实现链路连通性监控
//
// Monitor 把平台链路上/下线通知原样转换为 ONLINE / OFFLINE 事件，
// 不做去抖、不做去重。
//
// # 信号源
//
//   - ManualSource: 由调用方通过 SetLinkUp 注入链路变化（平台回调、测试）
//   - PollingSource: 周期性读取 net.Interfaces()，只在在线状态翻转时通知
//
// 在线判定：存在一个已启用、非回环、且持有全局单播地址的网络接口。
//
// # 暂停与恢复
//
// Pause 调用 LinkSource.Watch 返回的取消函数，Resume 重新注册。
// 重复 Pause / Resume 为空操作。
//
// # 架构定位
//
// Tier: Core Layer Level 2
//
// 依赖：eventbus
package connectivity
