package request

// GetMemberListRequest 获取群成员列表请求（查询参数）
// 使用位置:
//   - internal/handler/group_handler.go: ListMembers
type GetMemberListRequest struct {
	GroupId string `form:"group_id" binding:"required"`
}
