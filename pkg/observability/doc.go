// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xkstats: 把引擎统计快照发布为 OpenTelemetry 指标
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 核心绑定层不感知指标后端，挂接与否由应用决定
package observability
