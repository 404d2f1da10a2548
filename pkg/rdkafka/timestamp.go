package rdkafka

import "time"

// TimestampType 标记消息时间戳的来源。
type TimestampType int

// 时间戳来源。
const (
	// TimestampNotAvailable 表示引擎未提供时间戳。
	TimestampNotAvailable TimestampType = iota

	// TimestampCreateTime 表示生产者写入时间。
	TimestampCreateTime

	// TimestampLogAppendTime 表示 broker 落盘时间。
	TimestampLogAppendTime
)

func (t TimestampType) String() string {
	switch t {
	case TimestampCreateTime:
		return "CreateTime"
	case TimestampLogAppendTime:
		return "LogAppendTime"
	default:
		return "NotAvailable"
	}
}

// Timestamp 是消息时间戳：来源标记加上毫秒值。
// 零值即"不可用"。
type Timestamp struct {
	Type   TimestampType
	Millis int64
}

// CreateTime 构造生产者写入时间戳。
func CreateTime(millis int64) Timestamp {
	return Timestamp{Type: TimestampCreateTime, Millis: millis}
}

// LogAppendTime 构造 broker 落盘时间戳。
func LogAppendTime(millis int64) Timestamp {
	return Timestamp{Type: TimestampLogAppendTime, Millis: millis}
}

// TimestampFromTime 把系统时间转为 CreateTime 时间戳。
func TimestampFromTime(t time.Time) Timestamp {
	return CreateTime(t.UnixMilli())
}

// TimestampNow 返回当前时间的 CreateTime 时间戳。
func TimestampNow() Timestamp {
	return TimestampFromTime(time.Now())
}

// ToMillis 返回自 epoch 起的毫秒值。
// 来源不可用或毫秒值为负（引擎以 -1 表示缺失）时 ok 为 false。
func (t Timestamp) ToMillis() (millis int64, ok bool) {
	if t.Type == TimestampNotAvailable || t.Millis < 0 {
		return 0, false
	}
	return t.Millis, true
}
