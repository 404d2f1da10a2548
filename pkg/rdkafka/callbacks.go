package rdkafka

// 本文件只能包含 C 声明（//export 的限制），回调垫片的定义在 glue.c。

/*
#include "glue.h"
*/
import "C"

import (
	"strings"
	"unsafe"

	"github.com/omeyang/xrdkafka/internal/cbridge"
)

// borrowContext 从引擎透传的 opaque 编码借用回调上下文。
// opaque 在 Go 侧始终是 uintptr（handle 整数编码，不是指针），
// 垫片（glue.c）负责 void* 与 uintptr_t 的互转。
// 纯借用：上下文仍归 Client 所有，这里绝不触发释放；引擎保证
// 句柄销毁完成前排空在途回调，因此借用期间上下文必然存活。
func borrowContext(opaque uintptr) Context {
	if opaque == 0 {
		return nil
	}
	ctx, ok := cbridge.Borrow(opaque).(Context)
	if !ok {
		return nil
	}
	return ctx
}

// goLogTrampoline 匹配引擎日志回调 ABI。
// 垫片（glue.c）已把 rd_kafka_opaque(rk) 凑进参数；引擎传来的
// facility 与消息均为 C 字符串，转换后分发到 Context.Log。
//
//export goLogTrampoline
func goLogTrampoline(_ *C.rd_kafka_t, level C.int, fac, buf *C.char, opaque C.uintptr_t) {
	ctx := borrowContext(uintptr(opaque))
	if ctx == nil {
		return
	}
	ctx.Log(LogLevel(level),
		strings.TrimSpace(C.GoString(fac)),
		strings.TrimSpace(C.GoString(buf)))
}

// goStatsTrampoline 匹配引擎统计回调 ABI。
// JSON 缓冲区归引擎所有：这里只借读（零拷贝切片视图），解析结果
// 不引用该内存；返回 0 让引擎自行释放缓冲区。解析失败走错误日志
// 路径而不向外传播——畸形统计负载不允许中断客户端运行。
//
//export goStatsTrampoline
func goStatsTrampoline(_ *C.rd_kafka_t, json *C.char, jsonLen C.size_t, opaque C.uintptr_t) C.int {
	ctx := borrowContext(uintptr(opaque))
	if ctx == nil {
		return 0
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(json)), int(jsonLen))
	stats, err := parseStatistics(raw)
	if err != nil {
		ctx.Log(LogLevelError, "STATS", err.Error())
		return 0
	}
	ctx.Stats(stats)
	return 0
}

// goErrorTrampoline 匹配引擎全局错误回调 ABI。
// 错误码包成 *GlobalError 分发到 Context.Error。
//
//export goErrorTrampoline
func goErrorTrampoline(_ *C.rd_kafka_t, err C.int, reason *C.char, opaque C.uintptr_t) {
	ctx := borrowContext(uintptr(opaque))
	if ctx == nil {
		return
	}
	ctx.Error(&GlobalError{Code: ErrorCode(err)},
		strings.TrimSpace(C.GoString(reason)))
}

// goDeliveryTrampoline 匹配引擎投递回报回调 ABI。
// 无论成败都产生视图（失败时 err 为携带视图的 *ProductionError）；
// 消息缓冲区在回调返回后由引擎释放，视图不得逃逸出 Delivery。
//
//export goDeliveryTrampoline
func goDeliveryTrampoline(_ *C.rd_kafka_t, rkmessage *C.rd_kafka_message_t, opaque C.uintptr_t) {
	ctx := borrowContext(uintptr(opaque))
	if ctx == nil {
		return
	}
	ctx.Delivery(newBorrowedFromDelivery(rkmessage))
}
