// Package nethealth 提供客户端侧网络健康监控
//
// nethealth 把三个独立的监控器挂在一条按状态命名的事件总线上：
//
//   - Connectivity: 主机链路上线/下线
//   - Service: 按端点类别统计请求失败，越过阈值时报告降级，衰减回落时报告恢复
//   - Stability: 被动模式下根据传输样本的加权平均速度判断，
//     主动模式下按固定周期探测一个资源
//
// # 快速开始
//
//	engine, err := nethealth.New(
//	    nethealth.WithConfigFile("nethealth.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop(context.Background())
//
//	engine.On(types.StatusDegraded, func(evt types.StatusEvent) {
//	    fmt.Println("degraded:", evt.Target())
//	})
//
//	client := &http.Client{Transport: engine.Transport(nil)}
//
// # 事件
//
// 每次状态迁移只分发一次，回调在分发者的 goroutine 中同步执行。
// 监控器之间互不感知，它们唯一的共享点就是事件总线。
//
// # 暂停与恢复
//
// Pause/Resume 按监控器名称生效，不带参数时作用于全部监控器。
// 暂停期间的信号被丢弃，已在途的定时器触发后变为空操作。
package nethealth
