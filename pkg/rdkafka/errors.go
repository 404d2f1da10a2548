package rdkafka

import (
	"errors"
	"fmt"
)

// 包级哨兵错误。
var (
	// ErrNilConfig 表示传入的配置为空。
	ErrNilConfig = errors.New("rdkafka: nil config")

	// ErrClosed 表示客户端已关闭。
	ErrClosed = errors.New("rdkafka: client closed")

	// ErrEmptyTopics 表示订阅的主题列表为空。
	ErrEmptyTopics = errors.New("rdkafka: empty topics")

	// ErrFlushTimeout 表示关闭/刷新时仍有消息未发送完成。
	ErrFlushTimeout = errors.New("rdkafka: flush timeout")
)

// ErrorCode 是引擎的响应错误码（rd_kafka_resp_err_t）。
// 负值为 librdkafka 本地错误，非负值为 broker 侧错误。
// String 方法在 native.go 中实现（需要引擎的 err2str）。
type ErrorCode int

// ClientCreationError 表示客户端构造失败。
// Reason 是构造调用时从引擎诊断缓冲区读回的可读描述。
type ClientCreationError struct {
	Reason string
}

func (e *ClientCreationError) Error() string {
	return "rdkafka: client creation failed: " + e.Reason
}

// MetadataFetchError 表示元数据或水位查询的同步往返失败。
type MetadataFetchError struct {
	Code ErrorCode
}

func (e *MetadataFetchError) Error() string {
	return fmt.Sprintf("rdkafka: metadata fetch failed: %s", e.Code)
}

// GroupListFetchError 表示消费组列表查询失败。
type GroupListFetchError struct {
	Code ErrorCode
}

func (e *GroupListFetchError) Error() string {
	return fmt.Sprintf("rdkafka: group list fetch failed: %s", e.Code)
}

// ConsumptionError 表示消费侧单条消息携带的引擎错误。
type ConsumptionError struct {
	Code ErrorCode
}

func (e *ConsumptionError) Error() string {
	return fmt.Sprintf("rdkafka: message consumption failed: %s", e.Code)
}

// PartitionEOFError 是到达分区末尾的非致命信号，携带分区号。
// 仅当配置了 enable.partition.eof 时引擎才会上报。
type PartitionEOFError struct {
	Partition int32
}

func (e *PartitionEOFError) Error() string {
	return fmt.Sprintf("rdkafka: reached end of partition %d", e.Partition)
}

// ProductionError 表示消息生产失败，携带引擎错误码。
// 只有投递回报路径（Context.Delivery 收到的失败）才携带失败消息的
// 视图；Produce 入队失败时 Msg 为 nil。Msg 的缓冲区由引擎持有，
// 投递回调返回后即失效；需要跨回调保留内容时必须先 Detach。
type ProductionError struct {
	Code ErrorCode
	Msg  *BorrowedMessage
}

func (e *ProductionError) Error() string {
	return fmt.Sprintf("rdkafka: message production failed: %s", e.Code)
}

// GlobalError 表示引擎异步上报的全局错误，不与任何一次调用关联，
// 只经由 Context.Error 到达应用，没有返回值通道。
type GlobalError struct {
	Code ErrorCode
}

func (e *GlobalError) Error() string {
	return fmt.Sprintf("rdkafka: global error: %s", e.Code)
}
