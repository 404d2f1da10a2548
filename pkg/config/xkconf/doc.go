// Package xkconf 提供 Kafka 客户端配置档案的加载，基于 koanf 实现。
//
// # 设计理念
//
// librdkafka 的配置是一张扁平的 "key=value" 字符串表，而运维侧的配置
// 文件习惯按客户端分档（生产者、消费者、调试工具各一份）。xkconf 负责
// 两者之间的转换：从 YAML/JSON 文件加载命名档案，展开公共默认值，并把
// 每个档案压平成 rdkafka.ConfigMap。
//
// 配置文件结构：
//
//	defaults:
//	  bootstrap.servers: "kafka-1:9092,kafka-2:9092"
//	clients:
//	  orders-producer:
//	    linger.ms: 5
//	    compression.type: zstd
//	  audit-consumer:
//	    group.id: audit
//	    auto.offset.reset: earliest
//
// defaults 段合并进每个档案，档案内的同名键优先。
//
// # 键名与分隔符
//
// Kafka 配置键本身含点号（bootstrap.servers），因此内部使用 "::" 作为
// koanf 的层级分隔符，点号键在档案内保持为单段，不会被误拆。
//
// # 值的类型
//
// 引擎只接受字符串值。档案内的标量（字符串、布尔、整数、浮点）按
// librdkafka 的习惯转为字符串；档案下出现嵌套结构视为配置错误。
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
package xkconf
