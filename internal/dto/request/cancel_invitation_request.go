package request

// CancelInvitationRequest 撤销邀请请求
// 使用位置:
//   - internal/handler/invitation_handler.go: Cancel
type CancelInvitationRequest struct {
	InvitationId string `json:"invitation_id" binding:"required"`
}
