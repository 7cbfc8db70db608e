// Package policy 集中群组权限判定，全部为纯函数，便于单测和复用
package policy

import (
	"memora_group_server/pkg/enum/group_info/privacy_enum"
	"memora_group_server/pkg/enum/group_member/role_enum"
)

// CanManageMembers 是否可以添加/移除普通成员、发出和撤销邀请
func CanManageMembers(role int8) bool {
	return role == role_enum.OWNER || role == role_enum.ADMIN
}

// CanChangeRoles 是否可以变更成员角色，仅群主可操作
func CanChangeRoles(role int8) bool {
	return role == role_enum.OWNER
}

// CanDeleteGroup 是否可以解散群组，仅群主可操作
func CanDeleteGroup(role int8) bool {
	return role == role_enum.OWNER
}

// CanUpdateGroup 是否可以修改群名称、公告等资料
func CanUpdateGroup(role int8) bool {
	return role == role_enum.OWNER || role == role_enum.ADMIN
}

// CanViewGroup 是否可以查看群组详情
// 非成员只能查看公开群，其余情况对外表现为群组不存在
func CanViewGroup(isMember bool, privacy int8) bool {
	if isMember {
		return true
	}
	return privacy == privacy_enum.PUBLIC
}

// CanViewMemberList 是否可以查看成员列表
// role 为 nil 表示非成员，一律不可见；群主和管理员总是可见；
// 普通成员仅在非公开群可见（公开群对普通成员隐藏完整名单，防止被抓取）
func CanViewMemberList(role *int8, privacy int8) bool {
	if role == nil {
		return false
	}
	if *role == role_enum.OWNER || *role == role_enum.ADMIN {
		return true
	}
	return privacy != privacy_enum.PUBLIC
}
