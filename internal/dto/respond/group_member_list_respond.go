package respond

// GroupMemberListRespond 群成员列表项响应，带用户昵称头像
// 使用位置:
//   - internal/service/group/service.go: ListMembers
type GroupMemberListRespond struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Role     int8   `json:"role"`
	JoinedAt string `json:"joined_at"`
}
