package request

// AddMemberRequest 添加群成员请求
// Role 省略时默认普通成员
// 使用位置:
//   - internal/handler/group_handler.go: AddMember
//   - internal/service/group/service.go: AddMember
type AddMemberRequest struct {
	GroupId string `json:"group_id" binding:"required"`
	UserId  string `json:"user_id" binding:"required"`
	Role    int8   `json:"role" binding:"omitempty,min=1,max=2"`
}
