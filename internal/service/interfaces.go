// Package service 定义业务层接口
// Handler 依赖这里的接口而非具体实现，便于测试时替换
package service

import (
	"memora_group_server/internal/dto/request"
	"memora_group_server/internal/dto/respond"
)

// GroupService 群组与成员生命周期
// 所有涉及成员行与计数的变更都在一个事务内完成，
// memberCnt 在任何操作之后都等于成员行数
type GroupService interface {
	// CreateGroup 创建群组，创建者为群主，初始成员为普通成员
	CreateGroup(actorId string, req *request.CreateGroupRequest) (*respond.GroupInfoRespond, error)
	// GetGroup 获取群组详情，按可见性规则脱敏
	GetGroup(actorId, groupId string) (*respond.GroupDetailRespond, error)
	// UpdateGroup 更新群组资料，群主和管理员可操作
	UpdateGroup(actorId string, req *request.UpdateGroupRequest) (*respond.GroupInfoRespond, error)
	// DeleteGroup 解散群组，级联删除成员与邀请，仅群主可操作
	DeleteGroup(actorId, groupId string) error
	// AddMember 直接添加成员，群主和管理员可操作
	AddMember(actorId string, req *request.AddMemberRequest) (*respond.GroupMemberRespond, error)
	// RemoveMember 移除成员或自行退群
	RemoveMember(actorId string, req *request.RemoveMemberRequest) error
	// ChangeRole 变更成员角色，指定 OWNER 时原群主同事务降为管理员
	ChangeRole(actorId string, req *request.ChangeRoleRequest) (*respond.GroupMemberRespond, error)
	// JoinPublicGroup 加入公开群，附带关系归档建议
	JoinPublicGroup(actorId, groupId string) (*respond.JoinGroupRespond, error)
	// ListMembers 获取成员列表，可见性不足时返回空列表
	ListMembers(actorId, groupId string) ([]respond.GroupMemberListRespond, error)
}

// InvitationService 群邀请生命周期
// 状态机 PENDING -> {ACCEPTED, DECLINED, EXPIRED}，终态不再变化
type InvitationService interface {
	// Invite 批量发出邀请，已是成员或已有待处理邀请的静默跳过
	Invite(actorId string, req *request.InviteMembersRequest) (*respond.InviteResultRespond, error)
	// Respond 接受或拒绝邀请，仅被邀请人可操作
	Respond(actorId, invitationId string, accept bool) (*respond.RespondInvitationRespond, error)
	// Cancel 撤销待处理邀请，群主和管理员可操作，行直接删除
	Cancel(actorId, invitationId string) error
	// ListPendingForUser 当前用户所有未过期的待处理邀请
	ListPendingForUser(actorId string) ([]respond.InvitationRespond, error)
	// ListPendingForGroup 群组所有待处理邀请，群主和管理员可查看
	ListPendingForGroup(actorId, groupId string) ([]respond.InvitationRespond, error)
}

// SuggestionProvider 关系归档建议，只读且永不阻塞主流程
type SuggestionProvider interface {
	// SuggestForJoin 用户加入群组后生成建议，失败时返回 nil
	SuggestForJoin(userId, groupName string) *respond.RelationshipSuggestionRespond
}
