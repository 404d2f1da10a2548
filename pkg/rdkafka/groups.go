package rdkafka

/*
#include "glue.h"
*/
import "C"

import (
	"sync"
	"unsafe"
)

// GroupMemberInfo 是消费组单个成员的记录。
// Metadata 与 Assignment 是成员上报的协议级二进制数据的拷贝。
type GroupMemberInfo struct {
	ID         string
	ClientID   string
	ClientHost string
	Metadata   []byte
	Assignment []byte
}

// GroupInfo 是单个消费组的记录。
type GroupInfo struct {
	Name         string
	State        string
	ProtocolType string
	Protocol     string
	Members      []GroupMemberInfo
	// Broker 组协调者。
	Broker BrokerMetadata
	// Err 组级错误，正常时为 nil。
	Err error
}

// GroupList 持有引擎分配的消费组列表结果缓冲区。
// 与 Metadata 同样的契约：解码即拷贝，缓冲区在 Close 时恰好释放一次。
type GroupList struct {
	ptr  *C.struct_rd_kafka_group_list
	free sync.Once
}

func newGroupList(ptr *C.struct_rd_kafka_group_list) *GroupList {
	return &GroupList{ptr: ptr}
}

// Groups 解码全部消费组记录。
func (g *GroupList) Groups() []GroupInfo {
	cnt := int(g.ptr.group_cnt)
	if cnt == 0 {
		return nil
	}
	cGroups := unsafe.Slice(g.ptr.groups, cnt)
	groups := make([]GroupInfo, cnt)
	for i := range cGroups {
		cg := &cGroups[i]
		groups[i] = GroupInfo{
			Name:         C.GoString(cg.group),
			State:        C.GoString(cg.state),
			ProtocolType: C.GoString(cg.protocol_type),
			Protocol:     C.GoString(cg.protocol),
			Members:      decodeMembers(cg),
			Broker: BrokerMetadata{
				ID:   int32(cg.broker.id),
				Host: C.GoString(cg.broker.host),
				Port: int(cg.broker.port),
			},
			Err: codeToGroupError(ErrorCode(cg.err)),
		}
	}
	return groups
}

// Close 释放引擎分配的结果缓冲区，恰好一次，重复调用安全。
func (g *GroupList) Close() {
	g.free.Do(func() {
		C.rd_kafka_group_list_destroy(g.ptr)
	})
}

func decodeMembers(cg *C.struct_rd_kafka_group_info) []GroupMemberInfo {
	cnt := int(cg.member_cnt)
	if cnt == 0 {
		return nil
	}
	cMembers := unsafe.Slice(cg.members, cnt)
	members := make([]GroupMemberInfo, cnt)
	for i := range cMembers {
		cm := &cMembers[i]
		members[i] = GroupMemberInfo{
			ID:         C.GoString(cm.member_id),
			ClientID:   C.GoString(cm.client_id),
			ClientHost: C.GoString(cm.client_host),
			Metadata:   C.GoBytes(cm.member_metadata, C.int(cm.member_metadata_size)),
			Assignment: C.GoBytes(cm.member_assignment, C.int(cm.member_assignment_size)),
		}
	}
	return members
}

func codeToGroupError(code ErrorCode) error {
	if code == ErrCodeNoError {
		return nil
	}
	return &GroupListFetchError{Code: code}
}
