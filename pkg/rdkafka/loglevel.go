package rdkafka

import "log/slog"

// LogLevel 是引擎的 syslog 风格日志级别（0 最严重，7 最详细）。
type LogLevel int

// 引擎日志级别。
const (
	LogLevelEmerg LogLevel = iota
	LogLevelAlert
	LogLevelCritical
	LogLevelError
	LogLevelWarning
	LogLevelNotice
	LogLevelInfo
	LogLevelDebug
)

var logLevelNames = [...]string{
	"EMERG", "ALERT", "CRITICAL", "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG",
}

func (l LogLevel) String() string {
	if l < LogLevelEmerg || l > LogLevelDebug {
		return "UNKNOWN"
	}
	return logLevelNames[l]
}

// slogLevel 把引擎级别映射到 slog 级别。
// Emerg/Alert/Critical/Error 归并为 Error，Notice/Info 归并为 Info，
// 与原生引擎默认上下文的日志路由保持一致。
func (l LogLevel) slogLevel() slog.Level {
	switch {
	case l <= LogLevelError:
		return slog.LevelError
	case l == LogLevelWarning:
		return slog.LevelWarn
	case l <= LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
