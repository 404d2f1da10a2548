package rdkafka

/*
#include <string.h>
#include "glue.h"
*/
import "C"

import (
	"bytes"
	"strings"
	"sync/atomic"
	"unicode/utf8"
	"unsafe"
)

// Message 提供对 Kafka 消息各字段的统一只读访问。
// BorrowedMessage 与 OwnedMessage 均实现本接口。
type Message interface {
	// Key 返回消息键，无键时为 nil。
	Key() []byte
	// Payload 返回消息体，无消息体时为 nil。
	Payload() []byte
	// Topic 返回来源主题名。
	Topic() string
	// Partition 返回分区号。
	Partition() int32
	// Offset 返回偏移量。
	Offset() int64
	// Timestamp 返回消息时间戳。
	Timestamp() Timestamp
}

// provenance 标记视图缓冲区的来源，Free 的行为据此切换。
// 两种来源互斥：消费者 poll 产生的缓冲区归包装器所有，Free 时
// 必须归还引擎；投递回调产生的缓冲区归引擎所有，回调返回后由
// 引擎自行释放，包装器绝不能触发第二次释放。
type provenance uint8

const (
	provConsumer provenance = iota
	provDelivery
)

// BorrowedMessage 是零拷贝消息视图：各字段物理存放在引擎持有的
// 缓冲区中（消费者接收缓冲或生产者投递回报缓冲）。视图不得比其
// 来源组件活得更久——消费者视图在下一步处理前应 Free 或 Detach，
// 同时持有大量视图会耗尽消费者的接收缓冲；投递回调视图仅在回调
// 内有效。跨生命周期保留内容的唯一途径是 Detach。
type BorrowedMessage struct {
	ptr   *C.rd_kafka_message_t
	prov  provenance
	freed atomic.Bool
}

// newBorrowedFromConsumer 包装消费者 poll 返回的原生消息。
// 消息携带错误码时不产生视图：把"分区末尾"译为 *PartitionEOFError、
// 其余错误译为 *ConsumptionError，立即归还原生缓冲区后返回错误。
func newBorrowedFromConsumer(ptr *C.rd_kafka_message_t) (*BorrowedMessage, error) {
	if ptr.err != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		var err error
		if ptr.err == C.RD_KAFKA_RESP_ERR__PARTITION_EOF {
			err = &PartitionEOFError{Partition: int32(ptr.partition)}
		} else {
			err = &ConsumptionError{Code: ErrorCode(ptr.err)}
		}
		C.rd_kafka_message_destroy(ptr)
		return nil, err
	}
	return &BorrowedMessage{ptr: ptr, prov: provConsumer}, nil
}

// newBorrowedFromDelivery 包装投递回调送来的原生消息。
// 与消费路径不同，失败时也产生视图（供调用方检查失败的消息内容），
// 此时随视图返回 *ProductionError。缓冲区由引擎在回调返回后释放，
// 视图的 Free 对原生内存是空操作。
func newBorrowedFromDelivery(ptr *C.rd_kafka_message_t) (*BorrowedMessage, error) {
	m := &BorrowedMessage{ptr: ptr, prov: provDelivery}
	if ptr.err != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		return m, &ProductionError{Code: ErrorCode(ptr.err), Msg: m}
	}
	return m, nil
}

// Key 返回指向引擎缓冲区的键字节，不分配。
func (m *BorrowedMessage) Key() []byte {
	if m.ptr.key == nil {
		return nil
	}
	return unsafe.Slice((*byte)(m.ptr.key), int(m.ptr.key_len))
}

// Payload 返回指向引擎缓冲区的消息体字节，不分配。
func (m *BorrowedMessage) Payload() []byte {
	if m.ptr.payload == nil {
		return nil
	}
	return unsafe.Slice((*byte)(m.ptr.payload), int(m.ptr.len))
}

// Topic 返回来源主题名的零拷贝视图。
// 主题名由协议保证是合法文本；引擎返回非 UTF-8 字节属于内部不变量
// 被破坏，直接 panic 而非按可恢复错误处理。
func (m *BorrowedMessage) Topic() string {
	name := C.rd_kafka_topic_name(m.ptr.rkt)
	s := unsafe.String((*byte)(unsafe.Pointer(name)), int(C.strlen(name)))
	if !utf8.ValidString(s) {
		panic("rdkafka: topic name is not valid UTF-8")
	}
	return s
}

// Partition 返回分区号。
func (m *BorrowedMessage) Partition() int32 {
	return int32(m.ptr.partition)
}

// Offset 返回偏移量。
func (m *BorrowedMessage) Offset() int64 {
	return int64(m.ptr.offset)
}

// Timestamp 返回消息时间戳。
func (m *BorrowedMessage) Timestamp() Timestamp {
	var tstype C.rd_kafka_timestamp_type_t
	millis := int64(C.rd_kafka_message_timestamp(m.ptr, &tstype))
	if millis == -1 {
		return Timestamp{}
	}
	switch tstype {
	case C.RD_KAFKA_TIMESTAMP_CREATE_TIME:
		return CreateTime(millis)
	case C.RD_KAFKA_TIMESTAMP_LOG_APPEND_TIME:
		return LogAppendTime(millis)
	default:
		return Timestamp{}
	}
}

// Detach 把视图内容拷贝为独立的 OwnedMessage。
// 每个存在的字段（键、消息体）各一次分配，外加主题名；这是把消息
// 数据保留到来源组件生命周期之外、或跨线程/所有权边界传递的唯一
// 受支持方式。单向操作，允许多次调用。
func (m *BorrowedMessage) Detach() *OwnedMessage {
	return &OwnedMessage{
		key:       bytes.Clone(m.Key()),
		payload:   bytes.Clone(m.Payload()),
		topic:     strings.Clone(m.Topic()),
		timestamp: m.Timestamp(),
		partition: m.Partition(),
		offset:    m.Offset(),
	}
}

// Free 释放视图。
// 消费者来源：把原生缓冲区归还引擎（恰好一次，重复调用安全）。
// 投递回调来源：空操作——缓冲区归引擎所有，回调返回后由引擎释放，
// 这里再释放就是二次释放。释放后视图的任何访问器都不得再调用。
func (m *BorrowedMessage) Free() {
	if m == nil || !m.freed.CompareAndSwap(false, true) {
		return
	}
	if m.prov == provConsumer {
		C.rd_kafka_message_destroy(m.ptr)
	}
}

// =============================================================================
// OwnedMessage
// =============================================================================

// OwnedMessage 是消息各字段的值拷贝，不引用任何借用内存，生命周期
// 独立。只能经 BorrowedMessage.Detach 或 NewOwnedMessage 构造。
type OwnedMessage struct {
	key       []byte
	payload   []byte
	topic     string
	timestamp Timestamp
	partition int32
	offset    int64
}

// NewOwnedMessage 按字段构造 OwnedMessage，主要用于测试。
func NewOwnedMessage(key, payload []byte, topic string, timestamp Timestamp,
	partition int32, offset int64) *OwnedMessage {
	return &OwnedMessage{
		key:       key,
		payload:   payload,
		topic:     topic,
		timestamp: timestamp,
		partition: partition,
		offset:    offset,
	}
}

// Key 返回消息键，无键时为 nil。
func (m *OwnedMessage) Key() []byte { return m.key }

// Payload 返回消息体，无消息体时为 nil。
func (m *OwnedMessage) Payload() []byte { return m.payload }

// Topic 返回来源主题名。
func (m *OwnedMessage) Topic() string { return m.topic }

// Partition 返回分区号。
func (m *OwnedMessage) Partition() int32 { return m.partition }

// Offset 返回偏移量。
func (m *OwnedMessage) Offset() int64 { return m.offset }

// Timestamp 返回消息时间戳。
func (m *OwnedMessage) Timestamp() Timestamp { return m.timestamp }

// 确保实现接口
var (
	_ Message = (*BorrowedMessage)(nil)
	_ Message = (*OwnedMessage)(nil)
)
