package model

import (
	"gorm.io/gorm"
)

// GroupInfo 群组（共享空间）
// MemberCnt 为冗余计数，任何时刻必须等于该群未删除的 GroupMember 行数，
// 成员变更与计数更新始终在同一事务内完成
type GroupInfo struct {
	gorm.Model
	Uuid      string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:群组唯一id"`
	Name      string `gorm:"column:name;type:varchar(50);not null;comment:群名称"`
	Notice    string `gorm:"column:notice;type:varchar(500);comment:群公告"`
	Privacy   int8   `gorm:"column:privacy;default:0;comment:隐私模式，0.公开，1.仅好友，2.私密"`
	MemberCnt int    `gorm:"column:member_cnt;default:1;comment:群人数"`
	CreatorId string `gorm:"column:creator_id;type:char(20);not null;comment:创建者uuid"`
	Avatar    string `gorm:"column:avatar;type:char(255);comment:头像"`
}

func (GroupInfo) TableName() string {
	return "group_info"
}
