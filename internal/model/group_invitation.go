package model

import "time"

// GroupInvitation 群邀请
// 状态机: PENDING -> {ACCEPTED, DECLINED, EXPIRED}，终态不可再变更
//
// Pending 列是"每个 (群, 被邀请人) 至多一条待处理邀请"的数据库级保证：
// 待处理时为 1，进入终态后置 NULL。MySQL 唯一索引不约束 NULL，
// 因此终态行自动退出 idx_group_invitee_pending 约束
type GroupInvitation struct {
	ID          uint       `gorm:"primarykey"`
	Uuid        string     `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:邀请唯一id"`
	GroupUuid   string     `gorm:"type:char(20);uniqueIndex:idx_group_invitee_pending;index;not null;comment:群组ID"`
	InviterUuid string     `gorm:"type:char(20);not null;comment:邀请人ID"`
	InviteeUuid string     `gorm:"type:char(20);uniqueIndex:idx_group_invitee_pending;index;not null;comment:被邀请人ID"`
	Status      int8       `gorm:"default:0;comment:0待处理 1已接受 2已拒绝 3已过期"`
	Pending     *int8      `gorm:"uniqueIndex:idx_group_invitee_pending;comment:待处理标记，终态置NULL"`
	ExpiresAt   time.Time  `gorm:"not null;comment:过期时间"`
	RespondedAt *time.Time `gorm:"comment:响应时间"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (GroupInvitation) TableName() string {
	return "group_invitation"
}

// IsExpired 是否已过当前邀请的有效期
// 过期是惰性判定的：只在读取/响应时检查，不依赖后台定时任务
func (i *GroupInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
