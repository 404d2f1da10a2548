package rdkafka

import (
	"context"
	"log/slog"
)

// Context 是随客户端注册的多态回调对象。
// 引擎在其自有线程上并发调用这些方法，实现必须是并发安全的；
// 实现内部的可变状态由应用自行保护。
//
// Context 由 Client 独占持有直至关闭；注册进引擎 opaque 槽位的只是
// 一个非所有权别名（见 internal/cbridge），任何回调都不得释放它。
//
// 嵌入 BaseContext 即可只覆盖需要的方法。
type Context interface {
	// Log 接收引擎的日志行。fac 是引擎的日志来源标识（facility）。
	Log(level LogLevel, fac, message string)

	// Stats 接收引擎的统计快照。
	// 需要在配置中设置 statistics.interval.ms 才会启用。
	Stats(stats *Statistics)

	// Error 接收引擎异步上报的全局错误。
	Error(err error, reason string)

	// Delivery 接收投递回报。msg 始终非空（失败时也携带失败消息的
	// 视图供检查），投递失败时 err 为 *ProductionError。
	// msg 的缓冲区在本方法返回后由引擎释放，跨回调保留须先 Detach。
	Delivery(msg *BorrowedMessage, err error)
}

// BaseContext 是 Context 的默认实现：日志与错误走注入的结构化
// logger，统计与投递为近似空操作。并发安全（slog.Logger 并发安全）。
type BaseContext struct {
	logger *slog.Logger
}

// NewBaseContext 创建使用指定 logger 的 BaseContext。
// logger 为 nil 时使用 slog.Default()。
func NewBaseContext(logger *slog.Logger) *BaseContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseContext{logger: logger}
}

// Logger 返回注入的结构化 logger。
func (c *BaseContext) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Log 按引擎级别路由到结构化日志。
func (c *BaseContext) Log(level LogLevel, fac, message string) {
	c.Logger().LogAttrs(context.Background(), level.slogLevel(), message,
		slog.String("target", "librdkafka"),
		slog.String("fac", fac),
		slog.String("level", level.String()),
	)
}

// Stats 以 Debug 级别记录统计快照的概要。
func (c *BaseContext) Stats(stats *Statistics) {
	c.Logger().LogAttrs(context.Background(), slog.LevelDebug, "client statistics",
		slog.String("target", "librdkafka"),
		slog.String("name", stats.Name),
		slog.Int64("ts", stats.Ts),
		slog.Uint64("msg_cnt", stats.MsgCnt),
	)
}

// Error 以 Error 级别记录全局错误。
func (c *BaseContext) Error(err error, reason string) {
	c.Logger().LogAttrs(context.Background(), slog.LevelError, "client error",
		slog.String("target", "librdkafka"),
		slog.String("error", err.Error()),
		slog.String("reason", reason),
	)
}

// Delivery 默认忽略投递回报。
func (c *BaseContext) Delivery(_ *BorrowedMessage, _ error) {}

// 确保实现接口
var _ Context = (*BaseContext)(nil)
