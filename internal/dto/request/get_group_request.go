package request

// GetGroupRequest 获取群组详情请求（查询参数）
// 使用位置:
//   - internal/handler/group_handler.go: GetGroup
type GetGroupRequest struct {
	GroupId string `form:"group_id" binding:"required"`
}
