// Package eventbus 实现进程内状态事件总线
//
// 每个 types.Status 对应一个命名通道，通道持有按注册顺序排列的回调列表：
//   - RegisterChannel 幂等地创建通道
//   - Subscribe 追加回调，未注册的状态返回 *types.UnknownStatusError
//   - Dispatch 同步、按注册顺序调用所有回调，参数原样透传
//
// # 快速开始
//
//	bus := eventbus.NewBus()
//	bus.RegisterAll()
//
//	sub, _ := bus.Subscribe(types.StatusDegraded, func(evt types.StatusEvent) {
//	    fmt.Println("服务降级:", evt.Target())
//	})
//	defer sub.Close()
//
//	bus.Dispatch(types.StatusDegraded, "api")
//
// # 并发安全
//
// 回调列表由 sync.RWMutex 保护。Dispatch 在读锁下复制回调列表，
// 在锁外调用回调，因此回调内部订阅或取消订阅不会死锁，
// 但只对下一次 Dispatch 生效。
//
// 回调 panic 不会被捕获，会传播给 Dispatch 的调用者；
// 需要隔离的调用方应自行包装回调。
//
// # 架构定位
//
// Tier: Core Layer Level 1（无依赖）
//
// 被依赖：connectivity, service, stability, metrics
package eventbus
