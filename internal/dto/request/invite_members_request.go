package request

// InviteMembersRequest 批量邀请请求
// 已是成员或已有待处理邀请的用户会被静默跳过，批量部分成功不算错误
// 使用位置:
//   - internal/handler/invitation_handler.go: Invite
//   - internal/service/invitation/service.go: Invite
type InviteMembersRequest struct {
	GroupId    string   `json:"group_id" binding:"required"`
	InviteeIds []string `json:"invitee_ids" binding:"required,min=1"`
}
