package request

// JoinGroupRequest 加入公开群请求
// 使用位置:
//   - internal/handler/group_handler.go: JoinPublicGroup
type JoinGroupRequest struct {
	GroupId string `json:"group_id" binding:"required"`
}
