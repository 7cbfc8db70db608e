package request

// RemoveMemberRequest 移除群成员请求（管理员移除或成员自行退出）
// 使用位置:
//   - internal/handler/group_handler.go: RemoveMember
type RemoveMemberRequest struct {
	GroupId string `json:"group_id" binding:"required"`
	UserId  string `json:"user_id" binding:"required"`
}
