package rdkafka

import (
	"log/slog"
	"maps"
	"sort"
)

// ConfigMap 是传给原生引擎的不透明 string→string 配置。
// 键值语义由引擎的配置解析步骤负责，本包不做类型化校验。
type ConfigMap map[string]string

// Set 写入一个配置项并返回自身，便于链式构造。
func (m ConfigMap) Set(key, value string) ConfigMap {
	m[key] = value
	return m
}

// Get 读取配置项，返回值与是否存在。
func (m ConfigMap) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Clone 返回独立副本。构造客户端时总是先克隆，
// 避免修改调用方传入的 ConfigMap。
func (m ConfigMap) Clone() ConfigMap {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// sortedKeys 以确定的顺序遍历配置，保证构造失败信息可复现。
func (m ConfigMap) sortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClientType 选择原生引擎的实例类型。
type ClientType int

// 客户端类型。
const (
	// ClientTypeProducer 生产者实例。
	ClientTypeProducer ClientType = iota
	// ClientTypeConsumer 消费者实例。
	ClientTypeConsumer
)

func (t ClientType) String() string {
	if t == ClientTypeConsumer {
		return "consumer"
	}
	return "producer"
}

// clientOptions 包含客户端的可选配置。
type clientOptions struct {
	Context  Context
	LogLevel LogLevel
}

func defaultClientOptions() *clientOptions {
	return &clientOptions{
		Context:  NewBaseContext(nil),
		LogLevel: LogLevelInfo,
	}
}

// ClientOption 定义客户端的配置选项函数类型。
type ClientOption func(*clientOptions)

// WithContext 设置随客户端注册的回调上下文。
// ctx 必须并发安全；客户端持有它直至 Close。
func WithContext(ctx Context) ClientOption {
	return func(o *clientOptions) {
		if ctx != nil {
			o.Context = ctx
		}
	}
}

// WithLogger 等价于 WithContext(NewBaseContext(logger))：
// 只想换 logger、不想自定义 Context 时的捷径。
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		if logger != nil {
			o.Context = NewBaseContext(logger)
		}
	}
}

// WithLogLevel 设置引擎日志级别（构造后经 rd_kafka_set_log_level 生效）。
func WithLogLevel(level LogLevel) ClientOption {
	return func(o *clientOptions) {
		if level >= LogLevelEmerg && level <= LogLevelDebug {
			o.LogLevel = level
		}
	}
}
