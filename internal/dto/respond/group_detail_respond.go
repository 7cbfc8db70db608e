package respond

// GroupDetailRespond 群组详情响应
// MyRole 为 nil 表示当前用户不是成员
// Members 按成员列表可见性规则填充，不可见时为空列表而非错误
type GroupDetailRespond struct {
	GroupInfoRespond
	MyRole  *int8                    `json:"my_role"`
	Members []GroupMemberListRespond `json:"members"`
}
