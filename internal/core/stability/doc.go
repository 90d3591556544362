// Package stability 实现网络稳定性监控
//
// Monitor 有两种互斥的工作模式，由 Config.Resource 是否为空决定。
//
// # 被动模式
//
// 消费外部推送的 TransferSample，在容量为 MaxBufferSize 的窗口上
// 维护三角加权的速度均值（最新样本权重 N，最旧样本权重 1，
// 除数 N(N+1)/2）。窗口第一次溢出之后才开始比较：
//
//   - 稳定且均值 < SpeedThreshold：转为不稳定，分发 UNSTABLE
//   - 不稳定且均值 >= SpeedThreshold：转为稳定，分发 STABLE
//
// 状态不变时不分发。Pause 之后样本被丢弃，Resume 清空窗口但保留稳定状态。
//
// # 主动模式
//
// 周期性探测 Resource 并测量耗时：
//
//   - 探测失败：跳过本轮分类，等待 Interval
//   - 耗时 > DurationThreshold：慢请求计数加一，未达到 RequestThreshold
//     时立即再次探测，恰好达到时分发 UNSTABLE
//   - 耗时 <= DurationThreshold：计数曾达到阈值则分发 STABLE，计数清零
//
// Pause 让循环在下一轮开始前退出，Resume 清零计数并启动新循环。
//
// # 探测器
//
// ProberFor 按 Resource 的 scheme 选择探测器：
// http / https 使用 HTTPProber，tcp 使用 TCPProber，dns 使用 DNSProber。
//
// # 架构定位
//
// Tier: Core Layer Level 2
//
// 依赖：eventbus
package stability
