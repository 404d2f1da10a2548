package rdkafka_test

import (
	"fmt"
	"time"

	"github.com/omeyang/xrdkafka/pkg/rdkafka"
)

// ExampleConfigMap_Set 演示链式配置构建
func ExampleConfigMap_Set() {
	config := rdkafka.ConfigMap{}.
		Set("bootstrap.servers", "localhost:9092").
		Set("group.id", "orders-reader").
		Set("auto.offset.reset", "earliest")

	servers, ok := config.Get("bootstrap.servers")
	fmt.Println("servers:", servers, ok)

	_, ok = config.Get("enable.auto.commit")
	fmt.Println("unset key present:", ok)
	// Output:
	// servers: localhost:9092 true
	// unset key present: false
}

// ExampleConfigMap_Clone 演示配置克隆的独立性
func ExampleConfigMap_Clone() {
	base := rdkafka.ConfigMap{"bootstrap.servers": "localhost:9092"}
	derived := base.Clone().Set("group.id", "audit")

	_, inBase := base.Get("group.id")
	_, inDerived := derived.Get("group.id")
	fmt.Println("base has group.id:", inBase)
	fmt.Println("derived has group.id:", inDerived)
	// Output:
	// base has group.id: false
	// derived has group.id: true
}

// ExampleTimestamp_ToMillis 演示时间戳的可用性判定
func ExampleTimestamp_ToMillis() {
	created := rdkafka.CreateTime(1700000000000)
	if millis, ok := created.ToMillis(); ok {
		fmt.Println("创建时间戳:", millis)
	}

	var missing rdkafka.Timestamp
	if _, ok := missing.ToMillis(); !ok {
		fmt.Println("零值时间戳不可用")
	}
	// Output:
	// 创建时间戳: 1700000000000
	// 零值时间戳不可用
}

// ExampleTimestampFromTime 演示从 time.Time 构建时间戳
func ExampleTimestampFromTime() {
	at := time.UnixMilli(1700000000000).UTC()
	ts := rdkafka.TimestampFromTime(at)

	millis, ok := ts.ToMillis()
	fmt.Println(ts.Type, millis, ok)
	// Output: CreateTime 1700000000000 true
}

// ExampleNewOwnedMessage 演示脱离引擎缓冲区的自有消息
func ExampleNewOwnedMessage() {
	msg := rdkafka.NewOwnedMessage(
		[]byte("order-42"),
		[]byte(`{"amount":99}`),
		"orders",
		rdkafka.CreateTime(1700000000000),
		2, 1035,
	)

	fmt.Printf("%s[%d]@%d key=%s\n",
		msg.Topic(), msg.Partition(), msg.Offset(), msg.Key())
	// Output: orders[2]@1035 key=order-42
}

// Example_errors 演示错误哨兵
func Example_errors() {
	fmt.Println("空配置:", rdkafka.ErrNilConfig)
	fmt.Println("已关闭:", rdkafka.ErrClosed)
	fmt.Println("空订阅:", rdkafka.ErrEmptyTopics)
	fmt.Println("刷新超时:", rdkafka.ErrFlushTimeout)
	// Output:
	// 空配置: rdkafka: nil config
	// 已关闭: rdkafka: client closed
	// 空订阅: rdkafka: empty topics
	// 刷新超时: rdkafka: flush timeout
}

// ExampleLogLevel_String 演示 syslog 级别名
func ExampleLogLevel_String() {
	fmt.Println(rdkafka.LogLevelEmerg, rdkafka.LogLevelWarning, rdkafka.LogLevelDebug)
	// Output: EMERG WARNING DEBUG
}
