package rdkafka

/*
#include <stdlib.h>
#include "glue.h"
*/
import "C"

import (
	"time"
	"unsafe"
)

// Consumer 是轮询驱动的消费者：在 Client 之上补齐订阅与 poll。
// 再均衡、拉取、缓冲全部发生在引擎内部；Poll 只是从引擎取回下一条
// 消息的视图。Poll 返回的视图不得比 Consumer 活得更久。
type Consumer struct {
	*Client
}

// NewConsumer 创建消费者实例。
// config 必须包含 bootstrap.servers 与 group.id。
// 创建后会把引擎的消费事件重定向到消费队列（poll_set_consumer），
// 使 Poll 同时服务消息与回调分发。离组动作注册为客户端的关闭
// 钩子：无论 Close 从 Consumer 还是内嵌的 Client 发起，销毁句柄
// 之前都会先执行 rd_kafka_consumer_close。
func NewConsumer(config ConfigMap, opts ...ClientOption) (*Consumer, error) {
	client, err := NewClient(config, ClientTypeConsumer, opts...)
	if err != nil {
		return nil, err
	}
	C.rd_kafka_poll_set_consumer(client.native.ptr)
	client.preClose = func() error {
		if ret := C.rd_kafka_consumer_close(client.native.ptr); ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
			return &ConsumptionError{Code: ErrorCode(ret)}
		}
		return nil
	}
	return &Consumer{Client: client}, nil
}

// Subscribe 订阅主题集合，替换之前的订阅。
func (c *Consumer) Subscribe(topics ...string) error {
	if len(topics) == 0 {
		return ErrEmptyTopics
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return ErrClosed
	}

	tpl := C.rd_kafka_topic_partition_list_new(C.int(len(topics)))
	defer C.rd_kafka_topic_partition_list_destroy(tpl)
	for _, topic := range topics {
		ct := C.CString(topic)
		C.rd_kafka_topic_partition_list_add(tpl, ct, C.int32_t(PartitionAny))
		C.free(unsafe.Pointer(ct))
	}

	ret := C.rd_kafka_subscribe(c.native.ptr, tpl)
	if ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		return &ConsumptionError{Code: ErrorCode(ret)}
	}
	return nil
}

// Poll 阻塞至多 timeout 等待下一条消息。
// 无消息时返回 (nil, nil)。消息携带错误码时不产生视图：分区末尾
// 译为 *PartitionEOFError，其余译为 *ConsumptionError（原生缓冲区
// 已在返回前归还引擎）。成功时返回借用视图，调用方用毕必须 Free
// （或先 Detach 再 Free）；同时持有大量未 Free 的视图会耗尽引擎的
// 接收缓冲。Poll 期间发起的 Close 会等到本次 poll 返回后才销毁。
func (c *Consumer) Poll(timeout time.Duration) (*BorrowedMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return nil, ErrClosed
	}
	ptr := C.rd_kafka_consumer_poll(c.native.ptr, durationToMillis(timeout))
	if ptr == nil {
		return nil, nil
	}
	return newBorrowedFromConsumer(ptr)
}

// Close 先让消费者退出消费组（提交再均衡协议要求的离组动作，
// 由 NewConsumer 注册的关闭钩子完成），再走客户端的销毁流程。
// 重复调用返回 ErrClosed。
func (c *Consumer) Close() error {
	return c.Client.Close()
}
