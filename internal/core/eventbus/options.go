package eventbus

import "github.com/benbjohnson/clock"

// Option 总线选项
type Option func(*Bus)

// WithClock 设置事件时间戳使用的时钟
func WithClock(c clock.Clock) Option {
	return func(b *Bus) {
		if c != nil {
			b.clock = c
		}
	}
}
