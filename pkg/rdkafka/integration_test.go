//go:build integration

package rdkafka_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/omeyang/xrdkafka/pkg/rdkafka"
)

// =============================================================================
// 测试辅助
// =============================================================================

const brokerPartitions = 3

// setupKafka 启动 Kafka 容器并返回 bootstrap servers。
// 自动创建的主题固定 3 个分区，便于元数据与水位断言。
func setupKafka(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := kafkaContainer.Run(ctx,
		"confluentinc/cp-kafka:7.5.0",
		kafkaContainer.WithClusterID("test-cluster"),
		testcontainers.WithEnv(map[string]string{
			"KAFKA_NUM_PARTITIONS":            fmt.Sprintf("%d", brokerPartitions),
			"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
		}),
	)
	require.NoError(t, err, "failed to start kafka container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "failed to get kafka brokers")
	require.NotEmpty(t, brokers, "no brokers available")
	return brokers[0]
}

func randName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// produceMessages 同步生产 n 条消息到指定分区并等待投递完成。
func produceMessages(t *testing.T, brokers, topic string, partition int32, n int) {
	t.Helper()

	producer, err := rdkafka.NewProducer(rdkafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	require.NoError(t, err)
	defer producer.Close()

	for i := range n {
		key := fmt.Sprintf("key-%d", i)
		payload := fmt.Sprintf("payload-%d", i)
		require.NoError(t,
			producer.Produce(topic, partition, []byte(key), []byte(payload)))
	}
	require.NoError(t, producer.Flush(30*time.Second))
}

// captureContext 线程安全地捕获各类回调。
type captureContext struct {
	*rdkafka.BaseContext

	mu        sync.Mutex
	delivered []*rdkafka.OwnedMessage
	dlvErrs   []error
	stats     []*rdkafka.Statistics
}

func newCaptureContext() *captureContext {
	return &captureContext{BaseContext: rdkafka.NewBaseContext(nil)}
}

func (c *captureContext) Delivery(msg *rdkafka.BorrowedMessage, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.dlvErrs = append(c.dlvErrs, err)
		return
	}
	// 视图在回调返回后失效，跨回调保留必须 Detach
	c.delivered = append(c.delivered, msg.Detach())
}

func (c *captureContext) Stats(stats *rdkafka.Statistics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = append(c.stats, stats)
}

func (c *captureContext) snapshot() (delivered []*rdkafka.OwnedMessage, dlvErrs []error, stats []*rdkafka.Statistics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*rdkafka.OwnedMessage(nil), c.delivered...),
		append([]error(nil), c.dlvErrs...),
		append([]*rdkafka.Statistics(nil), c.stats...)
}

// =============================================================================
// 句柄生命周期
// =============================================================================

func TestIntegration_ClientLifecycleLoop(t *testing.T) {
	brokers := setupKafka(t)

	// 反复构造/销毁：恰好一次销毁，无双重释放、无泄漏；
	// 重复 Close 安全返回 ErrClosed
	for range 10 {
		client, err := rdkafka.NewClient(rdkafka.ConfigMap{
			"bootstrap.servers": brokers,
		}, rdkafka.ClientTypeProducer)
		require.NoError(t, err)
		require.NotEmpty(t, client.Name())

		require.NoError(t, client.Close())
		assert.ErrorIs(t, client.Close(), rdkafka.ErrClosed)
	}
}

func TestIntegration_QueryAfterClose(t *testing.T) {
	brokers := setupKafka(t)

	client, err := rdkafka.NewClient(rdkafka.ConfigMap{
		"bootstrap.servers": brokers,
	}, rdkafka.ClientTypeProducer)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = client.FetchMetadata("", 5*time.Second)
	assert.ErrorIs(t, err, rdkafka.ErrClosed)
	_, _, err = client.QueryWatermarks("t", 0, 5*time.Second)
	assert.ErrorIs(t, err, rdkafka.ErrClosed)
	_, err = client.FetchGroupList("", 5*time.Second)
	assert.ErrorIs(t, err, rdkafka.ErrClosed)
}

// =============================================================================
// 元数据与水位
// =============================================================================

func TestIntegration_FetchMetadata(t *testing.T) {
	brokers := setupKafka(t)
	topic := randName("metadata")
	produceMessages(t, brokers, topic, 0, 1)

	client, err := rdkafka.NewClient(rdkafka.ConfigMap{
		"bootstrap.servers": brokers,
	}, rdkafka.ClientTypeProducer)
	require.NoError(t, err)
	defer client.Close()

	// 单主题查询：恰好一条主题记录，分区号集合为 {0..P-1}
	md, err := client.FetchMetadata(topic, 15*time.Second)
	require.NoError(t, err)
	defer md.Close()

	topics := md.Topics()
	require.Len(t, topics, 1)
	assert.Equal(t, topic, topics[0].Name)
	require.NoError(t, topics[0].Err)

	ids := make(map[int32]bool)
	for _, p := range topics[0].Partitions {
		ids[p.ID] = true
	}
	require.Len(t, ids, brokerPartitions)
	for i := range int32(brokerPartitions) {
		assert.True(t, ids[i], "partition %d missing", i)
	}

	assert.NotEmpty(t, md.Brokers())
	assert.NotEmpty(t, md.OrigBrokerName())

	// 全量查询包含该主题
	all, err := client.FetchMetadata("", 15*time.Second)
	require.NoError(t, err)
	defer all.Close()

	found := false
	for _, tm := range all.Topics() {
		if tm.Name == topic {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIntegration_QueryWatermarks(t *testing.T) {
	brokers := setupKafka(t)
	topic := randName("watermarks")

	// 建主题但只写分区 0
	const produced = 5
	produceMessages(t, brokers, topic, 0, produced)

	client, err := rdkafka.NewClient(rdkafka.ConfigMap{
		"bootstrap.servers": brokers,
	}, rdkafka.ClientTypeProducer)
	require.NoError(t, err)
	defer client.Close()

	low, high, err := client.QueryWatermarks(topic, 0, 15*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(produced), high-low)

	// 空分区：低==高
	low, high, err = client.QueryWatermarks(topic, 1, 15*time.Second)
	require.NoError(t, err)
	assert.Equal(t, low, high)

	// 不存在的分区走错误路径，绝不返回未填充的哨兵值
	_, _, err = client.QueryWatermarks(topic, 99, 15*time.Second)
	require.Error(t, err)
	var mdErr *rdkafka.MetadataFetchError
	assert.ErrorAs(t, err, &mdErr)
}

// =============================================================================
// 生产与投递回报
// =============================================================================

func TestIntegration_ProduceDelivery(t *testing.T) {
	brokers := setupKafka(t)
	topic := randName("delivery")
	capture := newCaptureContext()

	producer, err := rdkafka.NewProducer(rdkafka.ConfigMap{
		"bootstrap.servers": brokers,
	}, rdkafka.WithContext(capture))
	require.NoError(t, err)

	require.NoError(t, producer.Produce(topic, 0, []byte("k1"), []byte("v1")))
	require.NoError(t, producer.Produce(topic, 0, nil, []byte("v2")))
	require.NoError(t, producer.Flush(30*time.Second))
	require.NoError(t, producer.Close())

	delivered, dlvErrs, _ := capture.snapshot()
	require.Empty(t, dlvErrs)
	require.Len(t, delivered, 2)

	assert.Equal(t, []byte("k1"), delivered[0].Key())
	assert.Equal(t, []byte("v1"), delivered[0].Payload())
	assert.Equal(t, topic, delivered[0].Topic())
	assert.Equal(t, int32(0), delivered[0].Partition())
	assert.GreaterOrEqual(t, delivered[0].Offset(), int64(0))

	assert.Nil(t, delivered[1].Key())
	assert.Equal(t, []byte("v2"), delivered[1].Payload())
}

func TestIntegration_DeliveryFailureCarriesMessageView(t *testing.T) {
	brokers := setupKafka(t)
	capture := newCaptureContext()

	// message.timeout.ms 极短且写往不存在的 broker 分区不可达，
	// 投递必然失败；失败路径也必须产生可检查的消息视图
	producer, err := rdkafka.NewProducer(rdkafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"message.timeout.ms": "1",
	}, rdkafka.WithContext(capture))
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.Produce(randName("doomed"), 0, nil, []byte("x")))

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		producer.Poll(100 * time.Millisecond)
		_, dlvErrs, _ := capture.snapshot()
		if len(dlvErrs) > 0 {
			var prodErr *rdkafka.ProductionError
			require.ErrorAs(t, dlvErrs[0], &prodErr)
			require.NotNil(t, prodErr.Msg, "failed delivery must still carry the message view")
			return
		}
	}
	t.Fatal("no delivery failure observed")
}

// =============================================================================
// 消费、分区末尾与 Detach
// =============================================================================

func TestIntegration_ConsumePartitionEOFAndDetach(t *testing.T) {
	brokers := setupKafka(t)
	topic := randName("consume")
	produceMessages(t, brokers, topic, 0, 1)

	consumer, err := rdkafka.NewConsumer(rdkafka.ConfigMap{
		"bootstrap.servers":    brokers,
		"group.id":             randName("group"),
		"auto.offset.reset":    "earliest",
		"enable.partition.eof": "true",
	})
	require.NoError(t, err)
	defer consumer.Close()

	require.NoError(t, consumer.Subscribe(topic))

	var owned *rdkafka.OwnedMessage
	var sawEOF bool
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) && (owned == nil || !sawEOF) {
		msg, err := consumer.Poll(500 * time.Millisecond)
		if err != nil {
			// 分区末尾译为独立的非致命信号，不暴露消息视图
			var eof *rdkafka.PartitionEOFError
			require.ErrorAs(t, err, &eof)
			assert.Equal(t, int32(0), eof.Partition)
			sawEOF = true
			continue
		}
		if msg == nil {
			continue
		}

		// Detach 内容等价，且在视图释放后仍然有效
		owned = msg.Detach()
		assert.Equal(t, msg.Key(), owned.Key())
		assert.Equal(t, msg.Payload(), owned.Payload())
		assert.Equal(t, msg.Topic(), owned.Topic())
		assert.Equal(t, msg.Partition(), owned.Partition())
		assert.Equal(t, msg.Offset(), owned.Offset())
		assert.Equal(t, msg.Timestamp(), owned.Timestamp())
		msg.Free()
		msg.Free() // 重复 Free 安全
	}

	require.True(t, sawEOF, "expected a partition EOF signal")
	require.NotNil(t, owned, "expected one message")
	assert.Equal(t, []byte("key-0"), owned.Key())
	assert.Equal(t, []byte("payload-0"), owned.Payload())
	assert.Equal(t, topic, owned.Topic())
	millis, ok := owned.Timestamp().ToMillis()
	require.True(t, ok)
	assert.Positive(t, millis)
}

// =============================================================================
// 消费组列表
// =============================================================================

func TestIntegration_FetchGroupList(t *testing.T) {
	brokers := setupKafka(t)
	topic := randName("groups")
	group := randName("group")
	produceMessages(t, brokers, topic, 0, 1)

	consumer, err := rdkafka.NewConsumer(rdkafka.ConfigMap{
		"bootstrap.servers": brokers,
		"group.id":          group,
		"auto.offset.reset": "earliest",
	})
	require.NoError(t, err)
	defer consumer.Close()
	require.NoError(t, consumer.Subscribe(topic))

	// 等消费者完成入组
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if msg, err := consumer.Poll(500 * time.Millisecond); err == nil && msg != nil {
			msg.Free()
			break
		}
	}

	gl, err := consumer.FetchGroupList(group, 15*time.Second)
	require.NoError(t, err)
	defer gl.Close()

	groups := gl.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, group, groups[0].Name)
	require.Len(t, groups[0].Members, 1)
	assert.NotEmpty(t, groups[0].Members[0].ClientID)

	// 空组名查询全部组
	all, err := consumer.FetchGroupList("", 15*time.Second)
	require.NoError(t, err)
	defer all.Close()

	found := false
	for _, g := range all.Groups() {
		if g.Name == group {
			found = true
		}
	}
	assert.True(t, found)
}

// =============================================================================
// 统计回调
// =============================================================================

func TestIntegration_StatsCallback(t *testing.T) {
	brokers := setupKafka(t)
	capture := newCaptureContext()

	producer, err := rdkafka.NewProducer(rdkafka.ConfigMap{
		"bootstrap.servers":      brokers,
		"statistics.interval.ms": "100",
	}, rdkafka.WithContext(capture))
	require.NoError(t, err)
	defer producer.Close()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		producer.Poll(100 * time.Millisecond)
		if _, _, stats := capture.snapshot(); len(stats) > 0 {
			assert.NotEmpty(t, stats[0].Name)
			assert.Equal(t, "producer", stats[0].Type)
			return
		}
	}
	t.Fatal("no statistics snapshot observed")
}
