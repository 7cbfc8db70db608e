package request

// UpdateGroupRequest 更新群组信息请求
// 指针字段表示"未提供则不修改"
// 使用位置:
//   - internal/handler/group_handler.go: UpdateGroup
//   - internal/service/group/service.go: UpdateGroup
type UpdateGroupRequest struct {
	GroupId string  `json:"group_id" binding:"required"`
	Name    *string `json:"name"`
	Notice  *string `json:"notice"`
	Privacy *int8   `json:"privacy" binding:"omitempty,min=0,max=2"`
	Avatar  *string `json:"avatar"`
}
