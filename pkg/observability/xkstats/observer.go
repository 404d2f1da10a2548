package xkstats

import (
	"context"

	"github.com/omeyang/xrdkafka/pkg/rdkafka"
)

// Observer 消费引擎统计快照。
// Observe 在引擎的 poll 线程上执行，实现必须快速返回。
type Observer interface {
	Observe(ctx context.Context, stats *rdkafka.Statistics)
}

// NoopObserver 返回丢弃所有快照的 Observer。
func NoopObserver() Observer {
	return noopObserver{}
}

type noopObserver struct{}

func (noopObserver) Observe(context.Context, *rdkafka.Statistics) {}

// ContextWithObserver 把 Observer 挂接到 inner 上：
// 每个统计快照先送 Observer，再照常送 inner.Stats。
// inner 为 nil 时使用默认上下文；observer 为 nil 时原样返回 inner。
func ContextWithObserver(inner rdkafka.Context, observer Observer) rdkafka.Context {
	if inner == nil {
		inner = rdkafka.NewBaseContext(nil)
	}
	if observer == nil {
		return inner
	}
	return &statsContext{Context: inner, observer: observer}
}

type statsContext struct {
	rdkafka.Context
	observer Observer
}

func (c *statsContext) Stats(stats *rdkafka.Statistics) {
	if stats != nil {
		c.observer.Observe(context.Background(), stats)
	}
	c.Context.Stats(stats)
}
