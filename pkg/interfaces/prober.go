package interfaces

import "context"

// Prober 网络探测器
//
// 只报告成功与否，耗时由调用者测量。
type Prober interface {
	// Probe 对 resource 发起一次请求
	Probe(ctx context.Context, resource string) bool
}

// ProberFunc 函数适配器
type ProberFunc func(ctx context.Context, resource string) bool

// Probe 实现 Prober
func (f ProberFunc) Probe(ctx context.Context, resource string) bool {
	return f(ctx, resource)
}
