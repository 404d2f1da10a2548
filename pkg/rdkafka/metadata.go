package rdkafka

/*
#include "glue.h"
*/
import "C"

import (
	"sync"
	"unsafe"
)

// BrokerMetadata 是单个 broker 的元数据记录。
type BrokerMetadata struct {
	ID   int32
	Host string
	Port int
}

// PartitionMetadata 是单个分区的元数据记录。
type PartitionMetadata struct {
	ID     int32
	Leader int32
	// Err 分区级错误，正常时为 nil。
	Err error
	// Replicas 副本所在 broker id。
	Replicas []int32
	// ISR 同步副本所在 broker id。
	ISR []int32
}

// TopicMetadata 是单个主题的元数据记录。
type TopicMetadata struct {
	Name       string
	Partitions []PartitionMetadata
	// Err 主题级错误，正常时为 nil。
	Err error
}

// Metadata 持有引擎分配的元数据结果缓冲区。
// 解码访问器把缓冲区内容走读成普通 Go 记录（解码即拷贝，结果不
// 引用引擎内存）；缓冲区本身在 Close 时恰好释放一次。
type Metadata struct {
	ptr  *C.struct_rd_kafka_metadata
	free sync.Once
}

func newMetadata(ptr *C.struct_rd_kafka_metadata) *Metadata {
	return &Metadata{ptr: ptr}
}

// Brokers 解码 broker 元数据。
func (m *Metadata) Brokers() []BrokerMetadata {
	cnt := int(m.ptr.broker_cnt)
	if cnt == 0 {
		return nil
	}
	cBrokers := unsafe.Slice(m.ptr.brokers, cnt)
	brokers := make([]BrokerMetadata, cnt)
	for i, b := range cBrokers {
		brokers[i] = BrokerMetadata{
			ID:   int32(b.id),
			Host: C.GoString(b.host),
			Port: int(b.port),
		}
	}
	return brokers
}

// Topics 解码主题元数据。
func (m *Metadata) Topics() []TopicMetadata {
	cnt := int(m.ptr.topic_cnt)
	if cnt == 0 {
		return nil
	}
	cTopics := unsafe.Slice(m.ptr.topics, cnt)
	topics := make([]TopicMetadata, cnt)
	for i, t := range cTopics {
		topics[i] = TopicMetadata{
			Name:       C.GoString(t.topic),
			Partitions: decodePartitions(t),
			Err:        codeToError(ErrorCode(t.err)),
		}
	}
	return topics
}

// OrigBrokerID 返回响应元数据请求的 broker id。
func (m *Metadata) OrigBrokerID() int32 {
	return int32(m.ptr.orig_broker_id)
}

// OrigBrokerName 返回响应元数据请求的 broker 名。
func (m *Metadata) OrigBrokerName() string {
	return C.GoString(m.ptr.orig_broker_name)
}

// Close 释放引擎分配的结果缓冲区，恰好一次，重复调用安全。
func (m *Metadata) Close() {
	m.free.Do(func() {
		C.rd_kafka_metadata_destroy(m.ptr)
	})
}

func decodePartitions(t C.rd_kafka_metadata_topic_t) []PartitionMetadata {
	cnt := int(t.partition_cnt)
	if cnt == 0 {
		return nil
	}
	cParts := unsafe.Slice(t.partitions, cnt)
	parts := make([]PartitionMetadata, cnt)
	for i, p := range cParts {
		parts[i] = PartitionMetadata{
			ID:       int32(p.id),
			Leader:   int32(p.leader),
			Err:      codeToError(ErrorCode(p.err)),
			Replicas: decodeInt32Array(p.replicas, int(p.replica_cnt)),
			ISR:      decodeInt32Array(p.isrs, int(p.isr_cnt)),
		}
	}
	return parts
}

func decodeInt32Array(ptr *C.int32_t, cnt int) []int32 {
	if cnt == 0 || ptr == nil {
		return nil
	}
	out := make([]int32, cnt)
	for i, v := range unsafe.Slice(ptr, cnt) {
		out[i] = int32(v)
	}
	return out
}

// codeToError 把元数据结果里的主题/分区级错误码译为 error，
// 无错误时为 nil。
func codeToError(code ErrorCode) error {
	if code == ErrCodeNoError {
		return nil
	}
	return &MetadataFetchError{Code: code}
}
