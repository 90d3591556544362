// Package types 定义 nethealth 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 nethealth 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - enums.go   - Status, MonitorName
//   - events.go  - StatusEvent, TransferSample
//   - errors.go  - 公共错误定义
//
// # 状态集合
//
// Status 在编译期定义，运行时不可扩展：
//
//	online / offline     连通性（ConnectivityMonitor）
//	stable / unstable    稳定性（StabilityMonitor）
//	degraded / resolved  服务健康（ServiceHealthMonitor）
package types
