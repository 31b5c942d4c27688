package scheduler

import "time"

// Clock 可注入时钟；测试中用假实现模拟峰谷时段切换与休眠
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock 真实墙钟
func SystemClock() Clock { return systemClock{} }
