package cbridge

import (
	"runtime/cgo"
)

// Ref 表示一个已固定地址、可穿越 C 边界的 Go 值。
// 零值无效；必须通过 Attach 创建。
// Ref 本身可在多个线程间复制传递，Release 只能由逻辑所有者调用一次。
type Ref struct {
	h cgo.Handle
}

// Attach 固定 v 并返回其 Ref。
// 在 Release 被调用之前，v 不会被 GC 回收，Pointer() 返回的值保持稳定。
func Attach(v any) Ref {
	return Ref{h: cgo.NewHandle(v)}
}

// Pointer 返回可写入原生引擎 opaque 槽位的 handle 整数编码。
// 编码值不是任何 Go 对象的内存地址，因此在 Go 侧必须以 uintptr
// 而非指针类型持有：运行时栈扫描会把指针槽位里的小整数判为损坏
// 指针并中止进程。void* 与 uintptr_t 之间的转换只发生在 C 垫片内。
func (r Ref) Pointer() uintptr {
	return uintptr(r.h)
}

// Valid 报告 r 是否由 Attach 创建。
func (r Ref) Valid() bool {
	return r.h != 0
}

// Borrow 按 opaque 编码取回 Attach 时固定的值。
//
// 这是一次借用：返回的值仍归 Attach 的调用者所有，Borrow 不做任何
// 释放，也不延长生命周期。在 Release 之后调用 Borrow 属于使用已
// 释放资源，会 panic；原生引擎保证销毁流程排空在途回调后才完成，
// 上层依赖该保证而非额外加锁。
func Borrow(p uintptr) any {
	return cgo.Handle(p).Value()
}

// Release 解除固定，之后 Pointer 失效、Borrow 不可再调用。
// 恰好调用一次；重复调用会 panic。
func (r Ref) Release() {
	r.h.Delete()
}
