package rdkafka

import "testing"

// =============================================================================
// 纯 Go 路径的基准测试（不触碰引擎）
// =============================================================================

func BenchmarkParseStatistics(b *testing.B) {
	raw := []byte(sampleStats)
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := parseStatistics(raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConfigMapClone(b *testing.B) {
	config := ConfigMap{
		"bootstrap.servers":      "kafka-1:9092,kafka-2:9092",
		"group.id":               "bench",
		"auto.offset.reset":      "earliest",
		"statistics.interval.ms": "5000",
		"enable.partition.eof":   "true",
	}
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		_ = config.Clone()
	}
}

func BenchmarkTimestampToMillis(b *testing.B) {
	ts := CreateTime(1700000000000)
	b.ResetTimer()
	for b.Loop() {
		if _, ok := ts.ToMillis(); !ok {
			b.Fatal("unexpected unavailable timestamp")
		}
	}
}

func BenchmarkOwnedMessageAccessors(b *testing.B) {
	msg := NewOwnedMessage(
		[]byte("key"), make([]byte, 1024), "orders",
		CreateTime(1700000000000), 3, 42,
	)
	b.ResetTimer()
	for b.Loop() {
		_ = msg.Key()
		_ = msg.Payload()
		_ = msg.Topic()
		_, _ = msg.Timestamp().ToMillis()
	}
}
