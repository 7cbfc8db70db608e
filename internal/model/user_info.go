package model

import (
	"gorm.io/gorm"
)

// UserInfo 用户基本信息
// 账号注册、登录由外部身份服务负责，这里只保存群成员列表展示所需的资料
type UserInfo struct {
	gorm.Model
	Uuid     string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`
	Nickname string `gorm:"column:nickname;type:varchar(20);comment:昵称"`
	Avatar   string `gorm:"column:avatar;type:char(255);comment:头像"`
}

func (UserInfo) TableName() string {
	return "user_info"
}
