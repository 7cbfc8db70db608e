package request

// RespondInvitationRequest 响应邀请请求
// Accept 使用指针以区分"未提供"和 false
// 使用位置:
//   - internal/handler/invitation_handler.go: Respond
type RespondInvitationRequest struct {
	InvitationId string `json:"invitation_id" binding:"required"`
	Accept       *bool  `json:"accept" binding:"required"`
}
