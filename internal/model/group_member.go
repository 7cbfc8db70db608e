package model

import "time"

// GroupMember 群成员关联表
// (group_uuid, user_uuid) 上的唯一索引是并发加入时"恰好一个成功"的真正保证，
// 业务层的预检查只用于提前给出友好错误。
// 不使用软删除：退群后再次加入需要复用该唯一索引
type GroupMember struct {
	ID        uint      `gorm:"primarykey"`
	GroupUuid string    `gorm:"type:char(20);uniqueIndex:idx_group_user;not null;comment:群组ID"`
	UserUuid  string    `gorm:"type:char(20);uniqueIndex:idx_group_user;index;not null;comment:用户ID"`
	Role      int8      `gorm:"default:1;comment:1普通成员 2管理员 3群主"`
	InvitedBy string    `gorm:"type:char(20);comment:邀请人uuid，直接加入时为空"`
	JoinedAt  time.Time `gorm:"autoCreateTime;comment:加入时间"`
}

func (GroupMember) TableName() string {
	return "group_member"
}
