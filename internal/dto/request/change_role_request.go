package request

// ChangeRoleRequest 变更成员角色请求
// Role 取值见 role_enum，指定 OWNER 时发生群主转让
// 使用位置:
//   - internal/handler/group_handler.go: ChangeRole
//   - internal/service/group/service.go: ChangeRole
type ChangeRoleRequest struct {
	GroupId string `json:"group_id" binding:"required"`
	UserId  string `json:"user_id" binding:"required"`
	Role    int8   `json:"role" binding:"required,min=1,max=3"`
}
