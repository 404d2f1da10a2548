package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xrdkafka/pkg/config/xkconf"
	"github.com/omeyang/xrdkafka/pkg/rdkafka"
)

// usageError 表示参数错误，映射到退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createMetadataCommand(),
		createWatermarksCommand(),
		createGroupsCommand(),
		createProduceCommand(),
		createConsumeCommand(),
	}
}

// buildConfig 从全局选项构造客户端配置。
// --config 优先；没有配置文件时 --brokers 必填。
func buildConfig(cmd *cli.Command) (rdkafka.ConfigMap, error) {
	if path := cmd.String("config"); path != "" {
		file, err := xkconf.Load(path)
		if err != nil {
			return nil, err
		}
		config, err := file.ConfigMap(cmd.String("profile"))
		if err != nil {
			return nil, err
		}
		// 命令行 brokers 覆盖档案值，便于对同一档案换集群巡检
		if brokers := cmd.String("brokers"); brokers != "" {
			config.Set("bootstrap.servers", brokers)
		}
		return config, nil
	}

	brokers := cmd.String("brokers")
	if brokers == "" {
		return nil, usageErrorf("需要 --brokers 或 --config")
	}
	return rdkafka.ConfigMap{"bootstrap.servers": brokers}, nil
}

// clientOptions 从全局选项构造客户端选项与 logger。
// 需要自定义 Context 的命令用返回的 logger 自行构造，再以
// WithContext 追加（选项按序生效，后者覆盖 WithLogger）。
func clientOptions(cmd *cli.Command) ([]rdkafka.ClientOption, *slog.Logger) {
	level := slog.LevelInfo
	engineLevel := rdkafka.LogLevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
		engineLevel = rdkafka.LogLevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	return []rdkafka.ClientOption{
		rdkafka.WithLogger(logger),
		rdkafka.WithLogLevel(engineLevel),
	}, logger
}

// =============================================================================
// metadata
// =============================================================================

func createMetadataCommand() *cli.Command {
	return &cli.Command{
		Name:      "metadata",
		Aliases:   []string{"m"},
		Usage:     "查看集群/主题元数据",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			opts, _ := clientOptions(cmd)
			return cmdMetadata(config, opts,
				cmd.Args().First(), cmd.Duration("timeout"))
		},
	}
}

func cmdMetadata(config rdkafka.ConfigMap, opts []rdkafka.ClientOption, topic string, timeout time.Duration) error {
	client, err := rdkafka.NewClient(config, rdkafka.ClientTypeProducer, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	md, err := client.FetchMetadata(topic, timeout)
	if err != nil {
		return err
	}
	defer md.Close()

	fmt.Printf("来源 broker: %s (id=%d)\n", md.OrigBrokerName(), md.OrigBrokerID())

	fmt.Println("brokers:")
	for _, b := range md.Brokers() {
		fmt.Printf("  %4d  %s:%d\n", b.ID, b.Host, b.Port)
	}

	fmt.Println("topics:")
	for _, t := range md.Topics() {
		if t.Err != nil {
			fmt.Printf("  %s  错误: %v\n", t.Name, t.Err)
			continue
		}
		fmt.Printf("  %s  (%d 分区)\n", t.Name, len(t.Partitions))
		for _, p := range t.Partitions {
			fmt.Printf("    分区 %d: leader=%d replicas=%v isr=%v\n",
				p.ID, p.Leader, p.Replicas, p.ISR)
			if p.Err != nil {
				fmt.Printf("      错误: %v\n", p.Err)
			}
		}
	}
	return nil
}

// =============================================================================
// watermarks
// =============================================================================

func createWatermarksCommand() *cli.Command {
	return &cli.Command{
		Name:      "watermarks",
		Aliases:   []string{"w"},
		Usage:     "查询分区水位",
		ArgsUsage: "<topic> <partition>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) != 2 {
				return usageErrorf("用法: watermarks <topic> <partition>")
			}
			partition, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return usageErrorf("无效的分区号 %q", args[1])
			}
			config, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			opts, _ := clientOptions(cmd)
			return cmdWatermarks(config, opts,
				args[0], int32(partition), cmd.Duration("timeout"))
		},
	}
}

func cmdWatermarks(config rdkafka.ConfigMap, opts []rdkafka.ClientOption, topic string, partition int32, timeout time.Duration) error {
	client, err := rdkafka.NewClient(config, rdkafka.ClientTypeProducer, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	low, high, err := client.QueryWatermarks(topic, partition, timeout)
	if err != nil {
		return err
	}
	fmt.Printf("%s[%d]: low=%d high=%d 消息数=%d\n", topic, partition, low, high, high-low)
	return nil
}

// =============================================================================
// groups
// =============================================================================

func createGroupsCommand() *cli.Command {
	return &cli.Command{
		Name:      "groups",
		Aliases:   []string{"g"},
		Usage:     "列出消费组",
		ArgsUsage: "[group]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			config, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			opts, _ := clientOptions(cmd)
			return cmdGroups(config, opts,
				cmd.Args().First(), cmd.Duration("timeout"))
		},
	}
}

func cmdGroups(config rdkafka.ConfigMap, opts []rdkafka.ClientOption, group string, timeout time.Duration) error {
	client, err := rdkafka.NewClient(config, rdkafka.ClientTypeProducer, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	gl, err := client.FetchGroupList(group, timeout)
	if err != nil {
		return err
	}
	defer gl.Close()

	groups := gl.Groups()
	if len(groups) == 0 {
		fmt.Println("没有消费组")
		return nil
	}
	for _, g := range groups {
		fmt.Printf("%s  state=%s protocol=%s/%s broker=%s:%d\n",
			g.Name, g.State, g.ProtocolType, g.Protocol, g.Broker.Host, g.Broker.Port)
		if g.Err != nil {
			fmt.Printf("  错误: %v\n", g.Err)
			continue
		}
		for _, m := range g.Members {
			fmt.Printf("  成员 %s  client=%s host=%s\n", m.ID, m.ClientID, m.ClientHost)
		}
	}
	return nil
}

// =============================================================================
// produce
// =============================================================================

func createProduceCommand() *cli.Command {
	return &cli.Command{
		Name:      "produce",
		Usage:     "发送一条消息并等待投递回报",
		ArgsUsage: "<topic>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "消息 key（空表示无 key）",
			},
			&cli.StringFlag{
				Name:  "payload",
				Usage: "消息内容",
			},
			&cli.Int32Flag{
				Name:  "partition",
				Usage: "目标分区（-1 表示由分区器决定）",
				Value: rdkafka.PartitionAny,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			topic := cmd.Args().First()
			if topic == "" {
				return usageErrorf("用法: produce <topic>")
			}
			config, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			opts, logger := clientOptions(cmd)
			return cmdProduce(config, opts, logger, topic,
				cmd.String("key"), cmd.String("payload"),
				cmd.Int32("partition"), cmd.Duration("timeout"))
		},
	}
}

// deliveryContext 捕获单条消息的投递回报。
type deliveryContext struct {
	*rdkafka.BaseContext

	mu     sync.Mutex
	result *rdkafka.OwnedMessage
	err    error
	done   chan struct{}
}

func newDeliveryContext(logger *slog.Logger) *deliveryContext {
	return &deliveryContext{
		BaseContext: rdkafka.NewBaseContext(logger),
		done:        make(chan struct{}),
	}
}

func (d *deliveryContext) Delivery(msg *rdkafka.BorrowedMessage, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.result != nil || d.err != nil {
		return
	}
	if err != nil {
		d.err = err
	} else {
		d.result = msg.Detach()
	}
	close(d.done)
}

func cmdProduce(config rdkafka.ConfigMap, opts []rdkafka.ClientOption, logger *slog.Logger, topic, key, payload string, partition int32, timeout time.Duration) error {
	dctx := newDeliveryContext(logger)
	opts = append(opts, rdkafka.WithContext(dctx))

	producer, err := rdkafka.NewProducer(config, opts...)
	if err != nil {
		return err
	}
	defer producer.Close()

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}
	if err := producer.Produce(topic, partition, keyBytes, []byte(payload)); err != nil {
		return err
	}
	if err := producer.Flush(timeout); err != nil {
		return err
	}

	select {
	case <-dctx.done:
	default:
		return errors.New("xrdcli: no delivery report received")
	}

	if dctx.err != nil {
		return dctx.err
	}
	fmt.Printf("已投递: %s[%d]@%d\n",
		dctx.result.Topic(), dctx.result.Partition(), dctx.result.Offset())
	return nil
}

// =============================================================================
// consume
// =============================================================================

func createConsumeCommand() *cli.Command {
	return &cli.Command{
		Name:      "consume",
		Usage:     "消费并打印消息",
		ArgsUsage: "<topic>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "group",
				Usage: "消费组 ID",
				Value: "xrdcli",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "消费条数（0 表示直到超时或中断）",
				Value: 0,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			topic := cmd.Args().First()
			if topic == "" {
				return usageErrorf("用法: consume <topic>")
			}
			config, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			config.Set("group.id", cmd.String("group"))
			if _, ok := config.Get("auto.offset.reset"); !ok {
				config.Set("auto.offset.reset", "earliest")
			}
			opts, _ := clientOptions(cmd)
			return cmdConsume(ctx, config, opts, topic,
				cmd.Int("count"), cmd.Duration("timeout"))
		},
	}
}

func cmdConsume(ctx context.Context, config rdkafka.ConfigMap, opts []rdkafka.ClientOption, topic string, count int, timeout time.Duration) error {
	consumer, err := rdkafka.NewConsumer(config, opts...)
	if err != nil {
		return err
	}
	defer consumer.Close()

	if err := consumer.Subscribe(topic); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	consumed := 0
	for (count == 0 || consumed < count) && time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}

		msg, err := consumer.Poll(500 * time.Millisecond)
		if err != nil {
			var eof *rdkafka.PartitionEOFError
			if errors.As(err, &eof) {
				fmt.Printf("-- 分区 %d 末尾\n", eof.Partition)
				continue
			}
			return err
		}
		if msg == nil {
			continue
		}

		printMessage(msg)
		msg.Free()
		consumed++
	}

	fmt.Printf("共消费 %d 条\n", consumed)
	return nil
}

func printMessage(msg *rdkafka.BorrowedMessage) {
	ts := ""
	if millis, ok := msg.Timestamp().ToMillis(); ok {
		ts = time.UnixMilli(millis).UTC().Format(time.RFC3339Nano)
	}
	fmt.Printf("%s[%d]@%d key=%q ts=%s\n  %s\n",
		msg.Topic(), msg.Partition(), msg.Offset(), msg.Key(), ts, msg.Payload())
}
