package respond

// RespondInvitationRespond 响应邀请的结果
// 拒绝时 Member 与 Suggestion 均为 nil
type RespondInvitationRespond struct {
	Invitation InvitationRespond              `json:"invitation"`
	Member     *GroupMemberRespond            `json:"member,omitempty"`
	Suggestion *RelationshipSuggestionRespond `json:"suggestion,omitempty"`
}
