package respond

// JoinGroupRespond 加入公开群响应
// Suggestion 为 nil 表示未产生归档建议
type JoinGroupRespond struct {
	Member     GroupMemberRespond             `json:"member"`
	Suggestion *RelationshipSuggestionRespond `json:"suggestion,omitempty"`
}
