// Package invitation_status_enum 群邀请状态枚举
// 状态机: PENDING -> {ACCEPTED, DECLINED, EXPIRED}，三个终态均不可再变更
package invitation_status_enum

const (
	PENDING  int8 = iota // 待处理
	ACCEPTED             // 已接受
	DECLINED             // 已拒绝
	EXPIRED              // 已过期（读取时惰性转移）
)
