package respond

// GroupInfoRespond 群组信息响应
// 使用位置:
//   - internal/service/group/service.go: CreateGroup, GetGroup, UpdateGroup
type GroupInfoRespond struct {
	GroupId   string `json:"group_id"`
	Name      string `json:"name"`
	Notice    string `json:"notice"`
	Privacy   int8   `json:"privacy"`
	MemberCnt int    `json:"member_cnt"`
	CreatorId string `json:"creator_id"`
	Avatar    string `json:"avatar"`
	CreatedAt string `json:"created_at"`
}
