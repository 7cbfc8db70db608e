// Package role_enum 群成员角色枚举
// 非空群组必须且只能有一个 OWNER
package role_enum

const (
	MEMBER int8 = 1 // 普通成员
	ADMIN  int8 = 2 // 管理员，可管理成员与邀请
	OWNER  int8 = 3 // 群主，拥有全部权限
)
