package respond

// RelationshipSuggestionRespond 关系归档建议响应
// 仅供客户端提示，不代表任何已发生的写入
type RelationshipSuggestionRespond struct {
	CategoryKind    string `json:"category_kind"`
	CategoryExists  bool   `json:"category_exists"`
	SubcategoryName string `json:"subcategory_name"`
	NeedsCreation   bool   `json:"needs_creation"`
}
