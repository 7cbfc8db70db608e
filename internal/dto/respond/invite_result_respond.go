package respond

// InviteResultRespond 批量邀请结果响应
// SkippedCount 为被静默跳过的受邀人数（已是成员或已有待处理邀请）
type InviteResultRespond struct {
	CreatedCount int                 `json:"created_count"`
	SkippedCount int                 `json:"skipped_count"`
	Invitations  []InvitationRespond `json:"invitations"`
}
