package rdkafka

/*
#include <stdlib.h>
#include "glue.h"
*/
import "C"

import (
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/omeyang/xrdkafka/internal/cbridge"
)

// Client 组合一个原生客户端句柄与回调 Context。
// 构造时（句柄可用之前）即完成三类回调 trampoline 与 opaque 编码的
// 注册。所有查询方法是到引擎的同步阻塞往返，可被多个 goroutine
// 并发调用；查询持有读锁、Close 持有写锁，保证 rd_kafka_destroy
// 不会与任何在途的原生调用重叠。禁止在回调 trampoline 内调用
// （引擎回调线程重入引擎是未定义行为，会与写锁互等死锁）。
type Client struct {
	native  *nativeClient
	context Context
	ref     cbridge.Ref
	mu      sync.RWMutex
	closed  atomic.Bool

	// preClose 由 Consumer/Producer 在构造时注册（离组、刷新队列），
	// 在写锁内、销毁句柄之前执行。经由内嵌字段直接调用 Client.Close
	// 也会走到它，关闭语义不会被绕开。只能做裸的原生调用，不得回到
	// 本包的公共方法（那些方法要拿读锁）。
	preClose func() error
}

// NewClient 按配置与类型创建客户端。
// 构造会启动引擎的后台线程；失败时返回 *ClientCreationError，
// 携带构造调用时从引擎诊断缓冲区读回的描述。
func NewClient(config ConfigMap, typ ClientType, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, ErrNilConfig
	}

	options := defaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	conf, err := newNativeConfig(config.Clone())
	if err != nil {
		return nil, err
	}

	// 注册 opaque 编码与回调槽位必须先于 rd_kafka_new：
	// 引擎一旦创建就可能在自己的线程上发起回调。
	ref := cbridge.Attach(options.Context)
	C.xrd_conf_set_opaque(conf.ptr, C.uintptr_t(ref.Pointer()))
	C.xrd_conf_install_callbacks(conf.ptr)

	ctype := C.rd_kafka_type_t(C.RD_KAFKA_PRODUCER)
	if typ == ClientTypeConsumer {
		ctype = C.RD_KAFKA_CONSUMER
	}

	errstr := make([]byte, errstrSize)
	rk := C.rd_kafka_new(ctype, conf.ptr,
		(*C.char)(unsafe.Pointer(&errstr[0])), errstrSize)
	if rk == nil {
		// 创建失败时配置所有权仍在本方，须自行销毁；
		// 此时引擎从未发起过回调，立即解除 context 固定。
		conf.destroy()
		ref.Release()
		return nil, &ClientCreationError{Reason: cStringBytes(errstr)}
	}
	// 创建成功后配置所有权已移交引擎。
	conf.release()

	C.rd_kafka_set_log_level(rk, C.int(options.LogLevel))

	return &Client{
		native:  newNativeClient(rk),
		context: options.Context,
		ref:     ref,
	}, nil
}

// Context 返回随客户端注册的回调上下文。
func (c *Client) Context() Context {
	return c.context
}

// Name 返回引擎分配的实例名（如 "rdkafka#producer-1"）。
// 客户端已关闭时返回空串。
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return ""
	}
	return C.GoString(C.rd_kafka_name(c.native.ptr))
}

// Close 销毁客户端。
// 取得写锁后先执行注册的关闭钩子，再销毁原生句柄——该调用阻塞
// 直到引擎排空在途回调并释放资源，之后才解除 context 的固定，
// 保证任何 trampoline 都不会借用到已释放的 context。与查询并发时
// Close 会等到在途查询返回后才销毁。重复调用返回 ErrClosed。
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.preClose != nil {
		err = c.preClose()
	}
	c.native.close()
	c.ref.Release()
	return err
}

// =============================================================================
// 查询操作（同步阻塞往返）
// =============================================================================

// FetchMetadata 查询集群元数据。
// topic 非空时只查询该主题（引擎 flag=0），为空时查询全部主题
// （flag=1）。阻塞至多 timeout；失败返回 *MetadataFetchError。
// 返回的 Metadata 持有引擎分配的结果缓冲区，用毕必须 Close。
func (c *Client) FetchMetadata(topic string, timeout time.Duration) (*Metadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return nil, ErrClosed
	}

	allTopics := C.int(1)
	var rkt *C.rd_kafka_topic_t
	if topic != "" {
		nt, err := newNativeTopic(c.native.ptr, topic)
		if err != nil {
			return nil, err
		}
		// 主题句柄只在本次查询内存活，不得比客户端活得更久。
		defer nt.close()
		allTopics = 0
		rkt = nt.ptr
	}

	var md *C.struct_rd_kafka_metadata
	ret := C.rd_kafka_metadata(c.native.ptr, allTopics, rkt, &md, durationToMillis(timeout))
	if ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		return nil, &MetadataFetchError{Code: ErrorCode(ret)}
	}
	return newMetadata(md), nil
}

// QueryWatermarks 查询主题分区的低/高水位偏移量。
// 只在引擎成功填充两个水位时返回成功；任何错误路径都不会把
// 未填充的哨兵值 (-1, -1) 当作结果返回。
func (c *Client) QueryWatermarks(topic string, partition int32, timeout time.Duration) (low, high int64, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return -1, -1, ErrClosed
	}

	ct := C.CString(topic)
	defer C.free(unsafe.Pointer(ct))

	cLow, cHigh := C.int64_t(-1), C.int64_t(-1)
	ret := C.rd_kafka_query_watermark_offsets(c.native.ptr, ct, C.int32_t(partition),
		&cLow, &cHigh, durationToMillis(timeout))
	if ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		return -1, -1, &MetadataFetchError{Code: ErrorCode(ret)}
	}
	return int64(cLow), int64(cHigh), nil
}

// FetchGroupList 查询消费组信息。
// group 非空时只查询该组，为空时查询全部组（给引擎传 NULL）。
// 失败返回 *GroupListFetchError。返回的 GroupList 用毕必须 Close。
func (c *Client) FetchGroupList(group string, timeout time.Duration) (*GroupList, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed.Load() {
		return nil, ErrClosed
	}

	var cgroup *C.char
	if group != "" {
		cgroup = C.CString(group)
		defer C.free(unsafe.Pointer(cgroup))
	}

	var gl *C.struct_rd_kafka_group_list
	ret := C.rd_kafka_list_groups(c.native.ptr, cgroup, &gl, durationToMillis(timeout))
	if ret != C.RD_KAFKA_RESP_ERR_NO_ERROR {
		return nil, &GroupListFetchError{Code: ErrorCode(ret)}
	}
	return newGroupList(gl), nil
}
