package respond

// InvitationRespond 邀请响应
type InvitationRespond struct {
	InvitationId string `json:"invitation_id"`
	GroupId      string `json:"group_id"`
	GroupName    string `json:"group_name,omitempty"`
	InviterId    string `json:"inviter_id"`
	InviteeId    string `json:"invitee_id"`
	Status       int8   `json:"status"`
	ExpiresAt    string `json:"expires_at"`
	CreatedAt    string `json:"created_at"`
}
