// Package xkstats 把引擎统计快照发布为 OpenTelemetry 指标。
//
// # 设计理念
//
// librdkafka 通过 statistics.interval.ms 周期性上报 JSON 统计快照，
// rdkafka 包把它解析为 Statistics 并经 Context.Stats 回调送达应用。
// xkstats 提供这条链路的最后一段：Observer 把快照里的关键指标写入
// OTel instruments，ContextWithObserver 把 Observer 挂接到任意
// rdkafka.Context 上，不改变原有回调行为。
//
// 快照值是引擎侧的累计或瞬时读数，统一以 gauge 记录，
// 由后端按需做速率换算。
//
// # 用法
//
//	observer, err := xkstats.NewOTelObserver()
//	if err != nil { ... }
//	ctx := xkstats.ContextWithObserver(rdkafka.NewBaseContext(logger), observer)
//	producer, err := rdkafka.NewProducer(config, rdkafka.WithContext(ctx))
//
// 回调在引擎的 poll 线程上执行，Observer 的实现必须快速返回且不得
// 反调客户端方法。
package xkstats
