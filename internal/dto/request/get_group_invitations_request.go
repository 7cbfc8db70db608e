package request

// GetGroupInvitationsRequest 获取群组待处理邀请列表请求（查询参数）
// 使用位置:
//   - internal/handler/invitation_handler.go: ListPendingForGroup
type GetGroupInvitationsRequest struct {
	GroupId string `form:"group_id" binding:"required"`
}
