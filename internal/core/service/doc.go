// Package service 实现服务健康监控
//
// Monitor 把 (requestKey, statusCode) 请求结果流按端点类分类，
// 通过带延迟递减的失败计数器产生 DEGRADED / RESOLVED 事件。
//
// # 端点类
//
// 端点类按声明顺序匹配请求键，第一个匹配者胜出。Pattern 为 "*" 时总是匹配，
// 其余 Pattern 按 Go 正则编译。匹配结果（包括未匹配）缓存在 LRU 中。
// 未匹配任何端点类的请求被静默丢弃。
//
// # 计数规则
//
//  1. 暂停中或状态码不在 TrackedStatuses 内：忽略
//  2. 计数加一，恰好等于阈值时分发 DEGRADED(类名)
//  3. DecrementDelay 之后计数减一，恰好等于阈值减一时分发 RESOLVED(类名)
//
// 暂停期间到期的递减直接丢弃。Resume 把所有计数清零，
// 在途失败状态被遗忘，这是已知的简化。
//
// # 并发
//
// 同一监控器的状态变化经 eventbus.Outbox 按计算顺序分发，回调中可以再次调用 HandleError。
// 订阅回调中可以调用 Pause / Resume，但不能重入调用 HandleError。
//
// # 架构定位
//
// Tier: Core Layer Level 2
//
// 依赖：eventbus
package service
