// Package interfaces 定义 nethealth 的公共接口
//
// 每个接口文件对应一个 internal/core 实现目录：
//   - eventbus.go  - 状态事件总线（internal/core/eventbus）
//   - monitor.go   - 监控器公共契约（connectivity/service/stability）
//   - link.go      - 链路状态信号源（internal/core/connectivity）
//   - prober.go    - 主动探测与计时样本（internal/core/stability）
//
// 外部信号（链路变化、请求状态码、传输计时）都以接口注入，
// 不依赖进程级单例，便于使用假时钟和假信号源进行确定性测试。
package interfaces
