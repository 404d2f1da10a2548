// Package cbridge 提供跨 C 边界传递 Go 值的桥接原语。
//
// 原生引擎（librdkafka）通过单个 opaque 指针槽位把用户数据带进每一次
// 回调调用。Go 的 GC 指针不能直接交给 C 长期持有，本包基于
// runtime/cgo.Handle 将任意 Go 值固定为一个稳定地址，并约束其
// 所有权语义：
//
//   - Attach 建立唯一的逻辑所有权，返回 Ref；
//   - Borrow 在回调中按地址取回值，是纯借用，绝不触发释放；
//   - Release 由所有者在客户端销毁时调用，恰好一次。
//
// 设计决策: 借用/释放的不对称是本仓库最关键的正确性性质——如果回调
// 路径按"取得所有权"语义还原值，第一次回调就会释放上下文，后续回调
// 将访问已释放内存。所有 trampoline 必须经由 Borrow，释放只发生在
// Release。把这套纪律集中在一个包里，避免在每个回调处重复手写。
package cbridge
