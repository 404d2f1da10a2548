package rdkafka

/*
#include <stdlib.h>
#include "glue.h"
*/
import "C"

import (
	"fmt"
	"time"
	"unsafe"
)

// PartitionAny 让引擎按分区器选择分区（RD_KAFKA_PARTITION_UA）。
const PartitionAny int32 = -1

// defaultFlushTimeout 是关闭时尽力刷新发送队列的等待上限。
const defaultFlushTimeout = 10 * time.Second

// Producer 是轮询驱动的生产者：Produce 异步入队，投递结果经
// Context.Delivery 回报；应用需周期性调用 Poll 以驱动回调分发。
type Producer struct {
	*Client
}

// NewProducer 创建生产者实例。
// config 必须包含 bootstrap.servers。关闭前的队列刷新注册为客户端
// 的关闭钩子：无论 Close 从 Producer 还是内嵌的 Client 发起，销毁
// 句柄之前都会先尽力投递仍在队列中的消息。
func NewProducer(config ConfigMap, opts ...ClientOption) (*Producer, error) {
	client, err := NewClient(config, ClientTypeProducer, opts...)
	if err != nil {
		return nil, err
	}
	client.preClose = func() error {
		// 钩子在写锁内执行，只做裸的原生调用。
		ret := C.rd_kafka_flush(client.native.ptr, durationToMillis(defaultFlushTimeout))
		if ErrorCode(ret) == ErrCodeTimedOut {
			return fmt.Errorf("%w: %d messages still in queue",
				ErrFlushTimeout, int(C.rd_kafka_outq_len(client.native.ptr)))
		}
		if ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
			return &ProductionError{Code: ErrorCode(ret)}
		}
		return nil
	}
	return &Producer{Client: client}, nil
}

// Produce 把一条消息拷贝进引擎的发送队列（异步，入队成功不等于
// 投递成功，最终结果经 Context.Delivery 回报）。partition 传
// PartitionAny 时由引擎分区器决定。key、payload 允许为 nil。
// 入队失败（如队列已满）返回 *ProductionError，此时错误不携带
// 消息视图（Msg 为 nil）。
func (p *Producer) Produce(topic string, partition int32, key, payload []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return ErrClosed
	}

	ct := C.CString(topic)
	defer C.free(unsafe.Pointer(ct))

	var keyPtr, payloadPtr unsafe.Pointer
	if len(key) > 0 {
		keyPtr = unsafe.Pointer(&key[0])
	}
	if len(payload) > 0 {
		payloadPtr = unsafe.Pointer(&payload[0])
	}

	// MSG_F_COPY：引擎在调用内同步拷贝 key/payload，
	// 之后 Go 内存可被安全回收。
	ret := C.xrd_produce(p.native.ptr, ct, C.int32_t(partition),
		keyPtr, C.size_t(len(key)), payloadPtr, C.size_t(len(payload)))
	if ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		return &ProductionError{Code: ErrorCode(ret)}
	}
	return nil
}

// Poll 驱动回调分发（投递回报、日志、统计），阻塞至多 timeout，
// 返回本次分发的事件数。
func (p *Producer) Poll(timeout time.Duration) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return 0
	}
	return int(C.rd_kafka_poll(p.native.ptr, durationToMillis(timeout)))
}

// Len 返回仍在发送队列中等待的消息数。
func (p *Producer) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return 0
	}
	return int(C.rd_kafka_outq_len(p.native.ptr))
}

// Flush 阻塞等待队列中的消息全部投递（并分发其回报），
// 超时仍有剩余时返回 ErrFlushTimeout 包装的错误。
func (p *Producer) Flush(timeout time.Duration) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return ErrClosed
	}
	ret := C.rd_kafka_flush(p.native.ptr, durationToMillis(timeout))
	if ErrorCode(ret) == ErrCodeTimedOut {
		return fmt.Errorf("%w: %d messages still in queue",
			ErrFlushTimeout, int(C.rd_kafka_outq_len(p.native.ptr)))
	}
	if ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		return &ProductionError{Code: ErrorCode(ret)}
	}
	return nil
}

// Close 先尽力刷新发送队列（由 NewProducer 注册的关闭钩子完成，
// 受默认 10s 刷新超时限制），再走客户端的销毁流程。
// 重复调用返回 ErrClosed。
func (p *Producer) Close() error {
	return p.Client.Close()
}
