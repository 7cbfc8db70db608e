package request

// DeleteGroupRequest 删除群组请求
// 使用位置:
//   - internal/handler/group_handler.go: DeleteGroup
type DeleteGroupRequest struct {
	GroupId string `json:"group_id" binding:"required"`
}
