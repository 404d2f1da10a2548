package xkstats

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xrdkafka/pkg/rdkafka"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xrdkafka/xkstats"

	metricReplyQ        = "xrdkafka.replyq.ops"
	metricQueueMsgs     = "xrdkafka.queue.messages"
	metricQueueBytes    = "xrdkafka.queue.bytes"
	metricTxMsgs        = "xrdkafka.tx.messages"
	metricRxMsgs        = "xrdkafka.rx.messages"
	metricBrokerRttAvg  = "xrdkafka.broker.rtt.avg"
	metricBrokerRttP99  = "xrdkafka.broker.rtt.p99"
	metricBrokerOutbuf  = "xrdkafka.broker.outbuf.messages"
	metricConsumerLag   = "xrdkafka.partition.consumer.lag"
	metricRebalanceCnt  = "xrdkafka.cgrp.rebalances"
	metricAssignmentLen = "xrdkafka.cgrp.assignment.size"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Observer 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)
	o := &otelObserver{}

	var err error
	gauge := func(name, desc, unit string) metric.Int64Gauge {
		if err != nil {
			return nil
		}
		var g metric.Int64Gauge
		g, err = meter.Int64Gauge(name,
			metric.WithDescription(desc),
			metric.WithUnit(unit),
		)
		return g
	}

	o.replyq = gauge(metricReplyQ, "ops waiting in the application reply queue", "{operation}")
	o.queueMsgs = gauge(metricQueueMsgs, "messages in the producer queue", "{message}")
	o.queueBytes = gauge(metricQueueBytes, "bytes in the producer queue", "By")
	o.txMsgs = gauge(metricTxMsgs, "messages transmitted since start", "{message}")
	o.rxMsgs = gauge(metricRxMsgs, "messages consumed since start", "{message}")
	o.brokerRttAvg = gauge(metricBrokerRttAvg, "broker round-trip time, window average", "us")
	o.brokerRttP99 = gauge(metricBrokerRttP99, "broker round-trip time, window p99", "us")
	o.brokerOutbuf = gauge(metricBrokerOutbuf, "messages awaiting transmission per broker", "{message}")
	o.consumerLag = gauge(metricConsumerLag, "consumer lag per partition", "{message}")
	o.rebalances = gauge(metricRebalanceCnt, "consumer group rebalances since start", "{rebalance}")
	o.assignment = gauge(metricAssignmentLen, "partitions currently assigned", "{partition}")
	if err != nil {
		return nil, fmt.Errorf("xkstats: create instrument failed: %w", err)
	}

	return o, nil
}

type otelObserver struct {
	replyq       metric.Int64Gauge
	queueMsgs    metric.Int64Gauge
	queueBytes   metric.Int64Gauge
	txMsgs       metric.Int64Gauge
	rxMsgs       metric.Int64Gauge
	brokerRttAvg metric.Int64Gauge
	brokerRttP99 metric.Int64Gauge
	brokerOutbuf metric.Int64Gauge
	consumerLag  metric.Int64Gauge
	rebalances   metric.Int64Gauge
	assignment   metric.Int64Gauge
}

var _ Observer = (*otelObserver)(nil)

// Observe 把一份快照写入各 instruments。
func (o *otelObserver) Observe(ctx context.Context, stats *rdkafka.Statistics) {
	if stats == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := clientAttrs(stats)
	o.replyq.Record(ctx, stats.ReplyQ, client)
	o.queueMsgs.Record(ctx, clampUint64(stats.MsgCnt), client)
	o.queueBytes.Record(ctx, clampUint64(stats.MsgSize), client)
	o.txMsgs.Record(ctx, stats.TxMsgs, client)
	o.rxMsgs.Record(ctx, stats.RxMsgs, client)

	for _, broker := range stats.Brokers {
		// 尚未建立连接的 broker 槽位没有有效读数
		if broker.Rtt.Cnt > 0 {
			brokerOpt := brokerAttrs(stats, broker.Name)
			o.brokerRttAvg.Record(ctx, broker.Rtt.Avg, brokerOpt)
			o.brokerRttP99.Record(ctx, broker.Rtt.P99, brokerOpt)
		}
		o.brokerOutbuf.Record(ctx, broker.OutbufMsgCnt, brokerAttrs(stats, broker.Name))
	}

	for topic, ts := range stats.Topics {
		for _, ps := range ts.Partitions {
			// 内部分区（-1）与未知 lag（-1）不上报
			if ps.Partition < 0 || ps.ConsumerLag < 0 {
				continue
			}
			o.consumerLag.Record(ctx, ps.ConsumerLag, partitionAttrs(stats, topic, ps.Partition))
		}
	}

	if stats.CGrp != nil {
		o.rebalances.Record(ctx, stats.CGrp.RebalanceCnt, client)
		o.assignment.Record(ctx, int64(stats.CGrp.AssignmentSize), client)
	}
}

// =============================================================================
// 属性构造
// =============================================================================

func clientAttrs(stats *rdkafka.Statistics) metric.RecordOption {
	return metric.WithAttributes(
		attribute.String("client", stats.Name),
		attribute.String("type", stats.Type),
	)
}

func brokerAttrs(stats *rdkafka.Statistics, broker string) metric.RecordOption {
	return metric.WithAttributes(
		attribute.String("client", stats.Name),
		attribute.String("type", stats.Type),
		attribute.String("broker", broker),
	)
}

func partitionAttrs(stats *rdkafka.Statistics, topic string, partition int32) metric.RecordOption {
	return metric.WithAttributes(
		attribute.String("client", stats.Name),
		attribute.String("topic", topic),
		attribute.String("partition", strconv.FormatInt(int64(partition), 10)),
	)
}

func clampUint64(v uint64) int64 {
	const maxInt64 = 1<<63 - 1
	if v > maxInt64 {
		return maxInt64
	}
	return int64(v)
}
