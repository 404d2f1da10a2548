package rdkafka

/*
#cgo LDFLAGS: -lrdkafka
#include <stdlib.h>
#include "glue.h"
*/
import "C"

import (
	"fmt"
	"sync"
	"time"
	"unsafe"
)

// errstrSize 是传给引擎构造调用的诊断缓冲区大小。
const errstrSize = 1024

// durationToMillis 把超时转为引擎使用的毫秒值。
// 非正值原样透传（引擎以 0 表示非阻塞、负值表示无限等待）。
func durationToMillis(d time.Duration) C.int {
	if d > 0 {
		return C.int(d.Milliseconds())
	}
	return C.int(d)
}

// String 返回引擎对错误码的可读描述。
func (c ErrorCode) String() string {
	return C.GoString(C.rd_kafka_err2str(C.rd_kafka_resp_err_t(c)))
}

// 本包直接判定的引擎错误码。
const (
	// ErrCodeNoError 无错误。
	ErrCodeNoError = ErrorCode(C.RD_KAFKA_RESP_ERR_NO_ERROR)
	// ErrCodePartitionEOF 本地错误：消费到达分区末尾。
	ErrCodePartitionEOF = ErrorCode(C.RD_KAFKA_RESP_ERR__PARTITION_EOF)
	// ErrCodeTimedOut 本地错误：操作超时。
	ErrCodeTimedOut = ErrorCode(C.RD_KAFKA_RESP_ERR__TIMED_OUT)
)

// =============================================================================
// 原生配置句柄
// =============================================================================

// nativeConfig 包装 rd_kafka_conf_t。
// rd_kafka_new 成功时接管其所有权；构造失败时由包装器销毁。
type nativeConfig struct {
	ptr *C.rd_kafka_conf_t
}

// newNativeConfig 把 ConfigMap 逐项写入新建的原生配置。
// 任一键写入失败即销毁半成品配置并返回引擎的诊断信息。
func newNativeConfig(config ConfigMap) (*nativeConfig, error) {
	conf := C.rd_kafka_conf_new()
	errstr := make([]byte, errstrSize)
	for _, k := range config.sortedKeys() {
		ck := C.CString(k)
		cv := C.CString(config[k])
		res := C.rd_kafka_conf_set(conf, ck, cv,
			(*C.char)(unsafe.Pointer(&errstr[0])), errstrSize)
		C.free(unsafe.Pointer(ck))
		C.free(unsafe.Pointer(cv))
		if res != C.RD_KAFKA_CONF_OK {
			C.rd_kafka_conf_destroy(conf)
			return nil, fmt.Errorf("rdkafka: set config %q: %s", k, cStringBytes(errstr))
		}
	}
	return &nativeConfig{ptr: conf}, nil
}

// destroy 销毁尚未被引擎接管的配置。
func (c *nativeConfig) destroy() {
	C.rd_kafka_conf_destroy(c.ptr)
	c.ptr = nil
}

// release 标记所有权已移交 rd_kafka_new，之后不得再销毁。
func (c *nativeConfig) release() {
	c.ptr = nil
}

// =============================================================================
// 原生客户端句柄
// =============================================================================

// nativeClient 包装 rd_kafka_t。
// 句柄由包装器独占持有：引擎内部线程安全，跨线程传递包装器引用
// 没问题，但指针绝不复制给第二个包装器。恰好一次销毁由 sync.Once
// 保证；销毁会阻塞直到引擎释放全部关联资源并排空在途回调。
type nativeClient struct {
	ptr     *C.rd_kafka_t
	destroy sync.Once
}

func newNativeClient(ptr *C.rd_kafka_t) *nativeClient {
	return &nativeClient{ptr: ptr}
}

func (n *nativeClient) close() {
	n.destroy.Do(func() {
		C.rd_kafka_destroy(n.ptr)
	})
}

// =============================================================================
// 原生主题句柄
// =============================================================================

// nativeTopic 包装 rd_kafka_topic_t。
// 不得比创建它的客户端活得更久；本包只在单次查询内部短暂持有。
type nativeTopic struct {
	ptr     *C.rd_kafka_topic_t
	destroy sync.Once
}

// newNativeTopic 在 rk 上创建主题句柄（默认主题配置）。
func newNativeTopic(rk *C.rd_kafka_t, topic string) (*nativeTopic, error) {
	ct := C.CString(topic)
	defer C.free(unsafe.Pointer(ct))
	ptr := C.rd_kafka_topic_new(rk, ct, nil)
	if ptr == nil {
		return nil, &MetadataFetchError{Code: ErrorCode(C.rd_kafka_last_error())}
	}
	return &nativeTopic{ptr: ptr}, nil
}

func (n *nativeTopic) close() {
	n.destroy.Do(func() {
		C.rd_kafka_topic_destroy(n.ptr)
	})
}

// cStringBytes 截取以 NUL 结尾的诊断缓冲区内容。
func cStringBytes(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
