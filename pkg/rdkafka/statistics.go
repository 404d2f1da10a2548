package rdkafka

import (
	"encoding/json"
	"fmt"
)

// Statistics 是引擎统计快照（statistics.interval.ms 触发）的结构化
// 形式，对应 librdkafka 的 STATISTICS.md schema。字段为快照值的拷贝，
// 不引用引擎内存，可跨线程自由传递。
//
// 引擎的 schema 随版本追加字段；未识别字段被忽略，缺失字段取零值。
type Statistics struct {
	// Name 客户端实例名（如 "rdkafka#producer-1"）。
	Name string `json:"name"`
	// ClientID 配置的 client.id。
	ClientID string `json:"client_id"`
	// Type 实例类型："producer" 或 "consumer"。
	Type string `json:"type"`
	// Ts 引擎内部时钟（微秒）。
	Ts int64 `json:"ts"`
	// Time 快照的 epoch 秒。
	Time int64 `json:"time"`
	// ReplyQ 等待应用处理的操作队列长度。
	ReplyQ int64 `json:"replyq"`
	// MsgCnt 当前在生产者队列中的消息数。
	MsgCnt uint64 `json:"msg_cnt"`
	// MsgSize 当前在生产者队列中的消息字节数。
	MsgSize uint64 `json:"msg_size"`
	// MsgMax 生产者队列容量（条数）。
	MsgMax uint64 `json:"msg_max"`
	// MsgSizeMax 生产者队列容量（字节）。
	MsgSizeMax uint64 `json:"msg_size_max"`
	// Tx 已发出的请求数。
	Tx int64 `json:"tx"`
	// TxBytes 已发出的字节数。
	TxBytes int64 `json:"tx_bytes"`
	// Rx 已收到的响应数。
	Rx int64 `json:"rx"`
	// RxBytes 已收到的字节数。
	RxBytes int64 `json:"rx_bytes"`
	// TxMsgs 已发出的消息数。
	TxMsgs int64 `json:"txmsgs"`
	// TxMsgBytes 已发出的消息字节数。
	TxMsgBytes int64 `json:"txmsg_bytes"`
	// RxMsgs 已消费的消息数。
	RxMsgs int64 `json:"rxmsgs"`
	// RxMsgBytes 已消费的消息字节数。
	RxMsgBytes int64 `json:"rxmsg_bytes"`
	// Brokers 按 broker 名索引的 broker 级指标。
	Brokers map[string]BrokerStats `json:"brokers"`
	// Topics 按主题名索引的主题级指标。
	Topics map[string]TopicStats `json:"topics"`
	// CGrp 消费组状态，仅消费者实例存在。
	CGrp *ConsumerGroupStats `json:"cgrp,omitempty"`
}

// BrokerStats 是单个 broker 连接的指标。
type BrokerStats struct {
	Name           string `json:"name"`
	NodeID         int32  `json:"nodeid"`
	State          string `json:"state"`
	StateAge       int64  `json:"stateage"`
	OutbufCnt      int64  `json:"outbuf_cnt"`
	OutbufMsgCnt   int64  `json:"outbuf_msg_cnt"`
	WaitRespCnt    int64  `json:"waitresp_cnt"`
	WaitRespMsgCnt int64  `json:"waitresp_msg_cnt"`
	Tx             int64  `json:"tx"`
	TxBytes        int64  `json:"txbytes"`
	TxErrs         int64  `json:"txerrs"`
	TxRetries      int64  `json:"txretries"`
	ReqTimeouts    int64  `json:"req_timeouts"`
	Rx             int64  `json:"rx"`
	RxBytes        int64  `json:"rxbytes"`
	RxErrs         int64  `json:"rxerrs"`
	RxCorridErrs   int64  `json:"rxcorriderrs"`
	RxPartial      int64  `json:"rxpartial"`

	// Rtt 请求往返延迟分布（微秒）。
	Rtt LatencyWindow `json:"rtt"`
	// IntLatency 消息进入内部队列到发送的延迟分布（微秒）。
	IntLatency LatencyWindow `json:"int_latency"`
	// OutbufLatency 发送缓冲排队延迟分布（微秒）。
	OutbufLatency LatencyWindow `json:"outbuf_latency"`
	// Throttle broker 限流时长分布（毫秒）。
	Throttle LatencyWindow `json:"throttle"`
}

// LatencyWindow 是引擎滚动窗口的延迟/尺寸汇总。
type LatencyWindow struct {
	Min    int64 `json:"min"`
	Max    int64 `json:"max"`
	Avg    int64 `json:"avg"`
	Sum    int64 `json:"sum"`
	Cnt    int64 `json:"cnt"`
	StdDev int64 `json:"stddev"`
	P50    int64 `json:"p50"`
	P75    int64 `json:"p75"`
	P90    int64 `json:"p90"`
	P95    int64 `json:"p95"`
	P99    int64 `json:"p99"`
	P9999  int64 `json:"p99_99"`
}

// TopicStats 是单个主题的指标。
type TopicStats struct {
	Topic       string `json:"topic"`
	MetadataAge int64  `json:"metadata_age"`
	// BatchSize 生产批次字节数分布。
	BatchSize LatencyWindow `json:"batchsize"`
	// BatchCnt 生产批次条数分布。
	BatchCnt LatencyWindow `json:"batchcnt"`
	// Partitions 按分区号（字符串形式，含内部分区 "-1"）索引。
	Partitions map[string]PartitionStats `json:"partitions"`
}

// PartitionStats 是单个分区的指标。
type PartitionStats struct {
	Partition       int32  `json:"partition"`
	Broker          int32  `json:"broker"`
	Leader          int32  `json:"leader"`
	Desired         bool   `json:"desired"`
	Unknown         bool   `json:"unknown"`
	MsgqCnt         int64  `json:"msgq_cnt"`
	MsgqBytes       int64  `json:"msgq_bytes"`
	XmitMsgqCnt     int64  `json:"xmit_msgq_cnt"`
	XmitMsgqBytes   int64  `json:"xmit_msgq_bytes"`
	FetchqCnt       int64  `json:"fetchq_cnt"`
	FetchqSize      int64  `json:"fetchq_size"`
	FetchState      string `json:"fetch_state"`
	QueryOffset     int64  `json:"query_offset"`
	NextOffset      int64  `json:"next_offset"`
	AppOffset       int64  `json:"app_offset"`
	StoredOffset    int64  `json:"stored_offset"`
	CommittedOffset int64  `json:"committed_offset"`
	EOFOffset       int64  `json:"eof_offset"`
	LoOffset        int64  `json:"lo_offset"`
	HiOffset        int64  `json:"hi_offset"`
	ConsumerLag     int64  `json:"consumer_lag"`
	TxMsgs          int64  `json:"txmsgs"`
	TxBytes         int64  `json:"txbytes"`
	RxMsgs          int64  `json:"rxmsgs"`
	RxBytes         int64  `json:"rxbytes"`
	Msgs            int64  `json:"msgs"`
	RxVerDrops      int64  `json:"rx_ver_drops"`
}

// ConsumerGroupStats 是消费组本地状态。
type ConsumerGroupStats struct {
	State           string `json:"state"`
	StateAge        int64  `json:"stateage"`
	JoinState       string `json:"join_state"`
	RebalanceAge    int64  `json:"rebalance_age"`
	RebalanceCnt    int64  `json:"rebalance_cnt"`
	RebalanceReason string `json:"rebalance_reason"`
	AssignmentSize  int32  `json:"assignment_size"`
}

// parseStatistics 解析引擎回调送来的 JSON 统计缓冲区。
// raw 指向引擎持有的内存，仅在解析期间读取，结果不引用 raw。
func parseStatistics(raw []byte) (*Statistics, error) {
	var stats Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("rdkafka: parse statistics: %w", err)
	}
	return &stats, nil
}
