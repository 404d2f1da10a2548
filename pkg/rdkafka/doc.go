// Package rdkafka 提供基于 librdkafka 的 Kafka 客户端绑定核心。
//
// 本包不实现 Kafka 协议：网络 I/O、消费组再均衡、内部缓冲与批量、
// 压缩、重试退避全部由原生引擎 librdkafka 在其自有线程上完成。
// 本包解决的是边界问题——让原生引擎的内存模型与回调模型在 Go 侧
// 安全、惯用，同时保住零拷贝的性能：
//
//   - 原生句柄（client/topic）的生命周期管理：恰好一次销毁，跨线程共享安全；
//   - Context 回调对象经由引擎的 opaque 指针槽位往返穿越 C 边界
//     （见 internal/cbridge），日志/统计/错误/投递回调从引擎线程
//     安全地分发回应用代码；
//   - BorrowedMessage 零拷贝消息视图：借用引擎持有的缓冲区，
//     生命周期绑定其来源组件，Detach 后得到独立的 OwnedMessage。
//
// # 回调与重入
//
// 日志、统计、错误、投递回调在引擎自有线程上被调用。回调内禁止再
// 调用任何阻塞式查询（FetchMetadata 等）：从引擎回调线程重入引擎
// 在 librdkafka 中是未定义行为，本包不做软件防护，只作约定禁止。
//
// # 并发
//
// 同一 Client 可被多个应用 goroutine 并发调用（引擎内部线程安全），
// 句柄由包装器独占持有，跨线程共享包装器本身而非复制底层指针。
// Context 实现必须是并发安全的。
//
// # 构建
//
// 需要系统安装 librdkafka（头文件与动态库），通过 cgo 链接。
package rdkafka
