package respond

// GroupMemberRespond 群成员关系响应
type GroupMemberRespond struct {
	GroupId   string `json:"group_id"`
	UserId    string `json:"user_id"`
	Role      int8   `json:"role"`
	InvitedBy string `json:"invited_by,omitempty"`
	JoinedAt  string `json:"joined_at"`
}
