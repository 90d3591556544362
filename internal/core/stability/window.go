package stability

import "math"

// ============================================================================
//                              Window
// ============================================================================

// Window 三角加权滑动窗口
//
// total 始终等于 Σ(距最旧位置 + 1) × speed，新样本权重为容量 N。
type Window struct {
	size       int
	speeds     []float64
	total      float64
	divisor    float64
	overflowed bool
}

// NewWindow 创建容量为 size 的窗口
func NewWindow(size int) *Window {
	return &Window{
		size:    size,
		speeds:  make([]float64, 0, size+1),
		divisor: float64(size) * float64(size+1) / 2,
	}
}

// Push 加入一个速度值
//
// 返回加权均值，以及窗口是否已溢出过且均值可用。
func (w *Window) Push(speed float64) (float64, bool) {
	// 已有样本各老化一格
	for _, s := range w.speeds {
		w.total -= s
	}
	w.total += float64(w.size) * speed

	w.speeds = append(w.speeds, speed)
	if len(w.speeds) > w.size {
		// 最旧样本的权重已经在上面老化到 0
		w.speeds = w.speeds[1:]
		w.overflowed = true
	}

	return w.Mean()
}

// Mean 返回加权均值
//
// 窗口未溢出过，或除数、均值非有限时返回 false。
func (w *Window) Mean() (float64, bool) {
	if !w.overflowed {
		return 0, false
	}
	if w.divisor == 0 || math.IsNaN(w.divisor) || math.IsInf(w.divisor, 0) {
		return 0, false
	}
	mean := w.total / w.divisor
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, false
	}
	return mean, true
}

// Len 返回当前样本数
func (w *Window) Len() int {
	return len(w.speeds)
}

// Overflowed 返回窗口是否溢出过
func (w *Window) Overflowed() bool {
	return w.overflowed
}

// Reset 清空窗口
func (w *Window) Reset() {
	w.speeds = w.speeds[:0]
	w.total = 0
	w.overflowed = false
}
