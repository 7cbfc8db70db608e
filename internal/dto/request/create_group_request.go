package request

// CreateGroupRequest 创建群组请求
// 使用位置:
//   - internal/handler/group_handler.go: CreateGroup
//   - internal/service/group/service.go: CreateGroup
type CreateGroupRequest struct {
	Name             string   `json:"name" binding:"required"`
	Notice           string   `json:"notice"`
	Privacy          int8     `json:"privacy" binding:"min=0,max=2"`
	Avatar           string   `json:"avatar"`
	InitialMemberIds []string `json:"initial_member_ids"`
}
