// Package group 群组与成员生命周期的业务实现
package group

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"memora_group_server/internal/dao/mysql/repository"
	myredis "memora_group_server/internal/dao/redis"
	"memora_group_server/internal/dto/request"
	"memora_group_server/internal/dto/respond"
	"memora_group_server/internal/infrastructure/mq"
	"memora_group_server/internal/model"
	"memora_group_server/internal/service"
	"memora_group_server/internal/service/policy"
	"memora_group_server/pkg/constants"
	"memora_group_server/pkg/enum/group_info/privacy_enum"
	"memora_group_server/pkg/enum/group_member/role_enum"
	"memora_group_server/pkg/errorx"
	"memora_group_server/pkg/util/random"
)

// 缓存键前缀
const (
	groupInfoKeyPrefix    = "group_info_"
	groupMembersKeyPrefix = "group_members_"
)

type groupService struct {
	repos      *repository.Repositories
	cache      myredis.AsyncCacheService
	producer   mq.EventProducer
	suggestion service.SuggestionProvider
}

// NewGroupService 创建群组服务
func NewGroupService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	producer mq.EventProducer,
	suggestion service.SuggestionProvider,
) service.GroupService {
	return &groupService{
		repos:      repos,
		cache:      cache,
		producer:   producer,
		suggestion: suggestion,
	}
}

// CreateGroup 创建群组
// 创建者成为群主，初始成员以普通成员身份一并写入，
// 群记录、群主行、初始成员行在同一事务内完成
func (s *groupService) CreateGroup(actorId string, req *request.CreateGroupRequest) (*respond.GroupInfoRespond, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
	}

	// 去重初始成员，创建者不重复计入
	initialIds := make([]string, 0, len(req.InitialMemberIds))
	seen := map[string]struct{}{actorId: {}}
	for _, id := range req.InitialMemberIds {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		initialIds = append(initialIds, id)
	}

	group := &model.GroupInfo{
		Uuid:      "G" + random.GetNowAndLenRandomString(13),
		Name:      name,
		Notice:    req.Notice,
		Privacy:   req.Privacy,
		MemberCnt: 1 + len(initialIds),
		CreatorId: actorId,
		Avatar:    req.Avatar,
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Group.Create(group); err != nil {
			return err
		}
		owner := &model.GroupMember{
			GroupUuid: group.Uuid,
			UserUuid:  actorId,
			Role:      role_enum.OWNER,
			JoinedAt:  time.Now(),
		}
		if err := tx.GroupMember.Create(owner); err != nil {
			return err
		}
		for _, id := range initialIds {
			member := &model.GroupMember{
				GroupUuid: group.Uuid,
				UserUuid:  id,
				Role:      role_enum.MEMBER,
				InvitedBy: actorId,
				JoinedAt:  time.Now(),
			}
			if err := tx.GroupMember.Create(member); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("创建群组失败", zap.String("actorId", actorId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("群组创建成功",
		zap.String("groupId", group.Uuid),
		zap.String("creatorId", actorId),
		zap.Int("memberCnt", group.MemberCnt),
	)
	s.publishEvent(mq.EventMemberAdded, group.Uuid, actorId, actorId)
	for _, id := range initialIds {
		s.publishEvent(mq.EventMemberAdded, group.Uuid, id, actorId)
	}
	return groupInfoToRespond(group), nil
}

// GetGroup 获取群组详情
// 非成员只能查看公开群，其余情况一律返回"不存在"以隐藏群组信息；
// 成员列表按可见性规则填充，不可见时为空列表
func (s *groupService) GetGroup(actorId, groupId string) (*respond.GroupDetailRespond, error) {
	info, err := s.loadGroupInfo(groupId)
	if err != nil {
		return nil, err
	}

	var rolePtr *int8
	member, err := s.repos.GroupMember.FindByGroupAndUser(groupId, actorId)
	if err != nil {
		if !errorx.IsNotFound(err) {
			return nil, err
		}
	} else {
		role := member.Role
		rolePtr = &role
	}

	if !policy.CanViewGroup(rolePtr != nil, info.Privacy) {
		return nil, errorx.ErrNotFound
	}

	detail := &respond.GroupDetailRespond{
		GroupInfoRespond: *info,
		MyRole:           rolePtr,
		Members:          []respond.GroupMemberListRespond{},
	}
	if policy.CanViewMemberList(rolePtr, info.Privacy) {
		members, err := s.loadMemberList(groupId)
		if err != nil {
			return nil, err
		}
		detail.Members = members
	}
	return detail, nil
}

// UpdateGroup 更新群组资料
// 群主和管理员可操作，指针字段缺省表示保持不变
func (s *groupService) UpdateGroup(actorId string, req *request.UpdateGroupRequest) (*respond.GroupInfoRespond, error) {
	group, err := s.repos.Group.FindByUuid(req.GroupId)
	if err != nil {
		return nil, err
	}
	if err := s.requireRole(req.GroupId, actorId, policy.CanUpdateGroup); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
		}
		group.Name = name
	}
	if req.Notice != nil {
		group.Notice = *req.Notice
	}
	if req.Privacy != nil {
		group.Privacy = *req.Privacy
	}
	if req.Avatar != nil {
		group.Avatar = *req.Avatar
	}

	if err := s.repos.Group.Update(group); err != nil {
		zap.L().Error("更新群组失败", zap.String("groupId", req.GroupId), zap.Error(err))
		return nil, err
	}
	s.invalidateGroupCache(req.GroupId)
	return groupInfoToRespond(group), nil
}

// DeleteGroup 解散群组
// 仅群主可操作，成员行与邀请行在同一事务内级联删除
func (s *groupService) DeleteGroup(actorId, groupId string) error {
	if _, err := s.repos.Group.FindByUuid(groupId); err != nil {
		return err
	}
	if err := s.requireRole(groupId, actorId, policy.CanDeleteGroup); err != nil {
		return err
	}

	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.GroupMember.DeleteByGroupUuid(groupId); err != nil {
			return err
		}
		if err := tx.Invitation.DeleteByGroupUuid(groupId); err != nil {
			return err
		}
		return tx.Group.Delete(groupId)
	})
	if err != nil {
		zap.L().Error("解散群组失败", zap.String("groupId", groupId), zap.Error(err))
		return err
	}

	zap.L().Info("群组已解散", zap.String("groupId", groupId), zap.String("actorId", actorId))
	s.publishEvent(mq.EventGroupDeleted, groupId, "", actorId)
	s.invalidateGroupCache(groupId)
	return nil
}

// AddMember 直接添加成员
// 权限检查与行锁都在事务内，(group,user) 唯一索引保证并发下恰好一个成功
func (s *groupService) AddMember(actorId string, req *request.AddMemberRequest) (*respond.GroupMemberRespond, error) {
	role := req.Role
	if role == 0 {
		role = role_enum.MEMBER
	}

	var member *model.GroupMember
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Group.FindByUuidForUpdate(req.GroupId); err != nil {
			return err
		}
		if err := requireRoleTx(tx, req.GroupId, actorId, policy.CanManageMembers); err != nil {
			return err
		}
		member = &model.GroupMember{
			GroupUuid: req.GroupId,
			UserUuid:  req.UserId,
			Role:      role,
			InvitedBy: actorId,
			JoinedAt:  time.Now(),
		}
		if err := tx.GroupMember.Create(member); err != nil {
			return err
		}
		return tx.Group.IncrementMemberCnt(req.GroupId)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("群成员已添加",
		zap.String("groupId", req.GroupId),
		zap.String("userId", req.UserId),
		zap.String("actorId", actorId),
	)
	s.publishEvent(mq.EventMemberAdded, req.GroupId, req.UserId, actorId)
	s.invalidateGroupCache(req.GroupId)
	return memberToRespond(member), nil
}

// RemoveMember 移除成员或自行退群
// 群主在仍有其他成员时必须先转让群主身份；
// 成员行删除与计数递减在同一事务内
func (s *groupService) RemoveMember(actorId string, req *request.RemoveMemberRequest) error {
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Group.FindByUuidForUpdate(req.GroupId); err != nil {
			return err
		}
		target, err := tx.GroupMember.FindByGroupAndUser(req.GroupId, req.UserId)
		if err != nil {
			return err
		}
		// 自行退群无需管理权限
		if actorId != req.UserId {
			if err := requireRoleTx(tx, req.GroupId, actorId, policy.CanManageMembers); err != nil {
				return err
			}
		}
		if target.Role == role_enum.OWNER {
			cnt, err := tx.GroupMember.CountByGroupUuid(req.GroupId)
			if err != nil {
				return err
			}
			if cnt > 1 {
				return errorx.ErrOwnerMustTransfer
			}
		}
		if err := tx.GroupMember.Delete(req.GroupId, req.UserId); err != nil {
			return err
		}
		return tx.Group.DecrementMemberCntBy(req.GroupId, 1)
	})
	if err != nil {
		return err
	}

	zap.L().Info("群成员已移除",
		zap.String("groupId", req.GroupId),
		zap.String("userId", req.UserId),
		zap.String("actorId", actorId),
	)
	s.publishEvent(mq.EventMemberRemoved, req.GroupId, req.UserId, actorId)
	s.invalidateGroupCache(req.GroupId)
	return nil
}

// ChangeRole 变更成员角色
// 仅群主可操作；指定 OWNER 时原群主在同一事务内降为管理员，
// 群在任何可观察状态下都恰好有一个群主
func (s *groupService) ChangeRole(actorId string, req *request.ChangeRoleRequest) (*respond.GroupMemberRespond, error) {
	if actorId == req.UserId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能变更自己的角色")
	}

	var target *model.GroupMember
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if _, err := tx.Group.FindByUuidForUpdate(req.GroupId); err != nil {
			return err
		}
		actor, err := tx.GroupMember.FindByGroupAndUser(req.GroupId, actorId)
		if err != nil {
			if errorx.IsNotFound(err) {
				return errorx.ErrForbidden
			}
			return err
		}
		if !policy.CanChangeRoles(actor.Role) {
			return errorx.ErrForbidden
		}
		target, err = tx.GroupMember.FindByGroupAndUser(req.GroupId, req.UserId)
		if err != nil {
			return err
		}
		if err := tx.GroupMember.UpdateRole(req.GroupId, req.UserId, req.Role); err != nil {
			return err
		}
		// 群主转让：原群主同事务降为管理员
		if req.Role == role_enum.OWNER {
			if err := tx.GroupMember.UpdateRole(req.GroupId, actorId, role_enum.ADMIN); err != nil {
				return err
			}
		}
		target.Role = req.Role
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("成员角色已变更",
		zap.String("groupId", req.GroupId),
		zap.String("userId", req.UserId),
		zap.Int8("role", req.Role),
		zap.String("actorId", actorId),
	)
	s.publishEvent(mq.EventMemberRoleChanged, req.GroupId, req.UserId, actorId)
	s.invalidateGroupCache(req.GroupId)
	return memberToRespond(target), nil
}

// JoinPublicGroup 加入公开群
// 非公开群拒绝加入；成功后生成关系归档建议，建议失败不影响加入
func (s *groupService) JoinPublicGroup(actorId, groupId string) (*respond.JoinGroupRespond, error) {
	var member *model.GroupMember
	var groupName string
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		group, err := tx.Group.FindByUuidForUpdate(groupId)
		if err != nil {
			return err
		}
		if group.Privacy != privacy_enum.PUBLIC {
			return errorx.ErrNotPublic
		}
		groupName = group.Name
		member = &model.GroupMember{
			GroupUuid: groupId,
			UserUuid:  actorId,
			Role:      role_enum.MEMBER,
			JoinedAt:  time.Now(),
		}
		if err := tx.GroupMember.Create(member); err != nil {
			return err
		}
		return tx.Group.IncrementMemberCnt(groupId)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("用户加入公开群", zap.String("groupId", groupId), zap.String("userId", actorId))
	s.publishEvent(mq.EventMemberAdded, groupId, actorId, actorId)
	s.invalidateGroupCache(groupId)

	return &respond.JoinGroupRespond{
		Member:     *memberToRespond(member),
		Suggestion: s.suggestion.SuggestForJoin(actorId, groupName),
	}, nil
}

// ListMembers 获取成员列表
// 可见性不足时返回空列表而非错误，避免经由错误响应泄露群规模
func (s *groupService) ListMembers(actorId, groupId string) ([]respond.GroupMemberListRespond, error) {
	group, err := s.repos.Group.FindByUuid(groupId)
	if err != nil {
		return nil, err
	}

	var rolePtr *int8
	member, err := s.repos.GroupMember.FindByGroupAndUser(groupId, actorId)
	if err != nil {
		if !errorx.IsNotFound(err) {
			return nil, err
		}
	} else {
		role := member.Role
		rolePtr = &role
	}

	if !policy.CanViewMemberList(rolePtr, group.Privacy) {
		return []respond.GroupMemberListRespond{}, nil
	}
	return s.loadMemberList(groupId)
}

// ==================== 内部辅助 ====================

// requireRole 检查操作者在群内的角色是否满足给定判定
// 非成员一律视为无权限
func (s *groupService) requireRole(groupId, actorId string, allowed func(int8) bool) error {
	return requireRoleTx(s.repos, groupId, actorId, allowed)
}

func requireRoleTx(repos *repository.Repositories, groupId, actorId string, allowed func(int8) bool) error {
	member, err := repos.GroupMember.FindByGroupAndUser(groupId, actorId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrForbidden
		}
		return err
	}
	if !allowed(member.Role) {
		return errorx.ErrForbidden
	}
	return nil
}

// loadGroupInfo 读群组信息，缓存优先
func (s *groupService) loadGroupInfo(groupId string) (*respond.GroupInfoRespond, error) {
	ctx := context.Background()
	key := groupInfoKeyPrefix + groupId
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var info respond.GroupInfoRespond
		if err := json.Unmarshal([]byte(cached), &info); err == nil {
			return &info, nil
		}
		zap.L().Warn("群组缓存反序列化失败", zap.String("key", key))
	}

	group, err := s.repos.Group.FindByUuid(groupId)
	if err != nil {
		return nil, err
	}
	info := groupInfoToRespond(group)
	if data, err := json.Marshal(info); err == nil {
		if err := s.cache.Set(ctx, key, string(data), constants.GROUP_CACHE_EXPIRY); err != nil {
			zap.L().Warn("写入群组缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return info, nil
}

// loadMemberList 读成员列表（含用户资料），缓存优先
func (s *groupService) loadMemberList(groupId string) ([]respond.GroupMemberListRespond, error) {
	ctx := context.Background()
	key := groupMembersKeyPrefix + groupId
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var list []respond.GroupMemberListRespond
		if err := json.Unmarshal([]byte(cached), &list); err == nil {
			return list, nil
		}
		zap.L().Warn("成员列表缓存反序列化失败", zap.String("key", key))
	}

	rows, err := s.repos.GroupMember.FindMembersWithUserInfo(groupId)
	if err != nil {
		return nil, err
	}
	list := make([]respond.GroupMemberListRespond, 0, len(rows))
	for _, row := range rows {
		list = append(list, respond.GroupMemberListRespond{
			UserId:   row.UserId,
			Nickname: row.Nickname,
			Avatar:   row.Avatar,
			Role:     row.Role,
			JoinedAt: row.JoinedAt.Format(time.DateTime),
		})
	}
	if data, err := json.Marshal(list); err == nil {
		if err := s.cache.Set(ctx, key, string(data), constants.MEMBER_CACHE_EXPIRY); err != nil {
			zap.L().Warn("写入成员列表缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return list, nil
}

// invalidateGroupCache 异步失效群组相关缓存
// 在事务提交之后调用，失败只记录日志
func (s *groupService) invalidateGroupCache(groupId string) {
	s.cache.SubmitTask(func() {
		ctx := context.Background()
		if err := s.cache.Delete(ctx, groupInfoKeyPrefix+groupId); err != nil {
			zap.L().Warn("删除群组缓存失败", zap.String("groupId", groupId), zap.Error(err))
		}
		if err := s.cache.Delete(ctx, groupMembersKeyPrefix+groupId); err != nil {
			zap.L().Warn("删除成员列表缓存失败", zap.String("groupId", groupId), zap.Error(err))
		}
	})
}

// publishEvent 事务提交后投递群组事件
func (s *groupService) publishEvent(eventType, groupId, userId, actorId string) {
	s.producer.Publish(mq.GroupEvent{
		Type:       eventType,
		GroupId:    groupId,
		UserId:     userId,
		ActorId:    actorId,
		OccurredAt: time.Now(),
	})
}

func groupInfoToRespond(group *model.GroupInfo) *respond.GroupInfoRespond {
	return &respond.GroupInfoRespond{
		GroupId:   group.Uuid,
		Name:      group.Name,
		Notice:    group.Notice,
		Privacy:   group.Privacy,
		MemberCnt: group.MemberCnt,
		CreatorId: group.CreatorId,
		Avatar:    group.Avatar,
		CreatedAt: group.CreatedAt.Format(time.DateTime),
	}
}

func memberToRespond(member *model.GroupMember) *respond.GroupMemberRespond {
	return &respond.GroupMemberRespond{
		GroupId:   member.GroupUuid,
		UserId:    member.UserUuid,
		Role:      member.Role,
		InvitedBy: member.InvitedBy,
		JoinedAt:  member.JoinedAt.Format(time.DateTime),
	}
}
