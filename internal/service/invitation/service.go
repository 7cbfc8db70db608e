// Package invitation 群邀请生命周期的业务实现
package invitation

import (
	"context"
	"time"

	"github.com/google/uuid"
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
	"memora_group_server/pkg/enum/group_member/role_enum"
	"memora_group_server/pkg/enum/invitation/invitation_status_enum"
	"memora_group_server/pkg/errorx"
)

// 缓存键前缀，与群组服务保持一致
const (
	groupInfoKeyPrefix    = "group_info_"
	groupMembersKeyPrefix = "group_members_"
)

type invitationService struct {
	repos      *repository.Repositories
	cache      myredis.AsyncCacheService
	producer   mq.EventProducer
	suggestion service.SuggestionProvider
}

// NewInvitationService 创建邀请服务
func NewInvitationService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	producer mq.EventProducer,
	suggestion service.SuggestionProvider,
) service.InvitationService {
	return &invitationService{
		repos:      repos,
		cache:      cache,
		producer:   producer,
		suggestion: suggestion,
	}
}

// Invite 批量发出邀请
// 已是成员或已有待处理邀请的受邀人静默跳过，批量部分成功不算错误；
// 预检查只用于提前跳过，并发下的唯一保证来自 (群, 受邀人, pending) 唯一索引
func (s *invitationService) Invite(actorId string, req *request.InviteMembersRequest) (*respond.InviteResultRespond, error) {
	if _, err := s.repos.Group.FindByUuid(req.GroupId); err != nil {
		return nil, err
	}
	if err := s.requireManager(req.GroupId, actorId); err != nil {
		return nil, err
	}

	now := time.Now()
	result := &respond.InviteResultRespond{Invitations: []respond.InvitationRespond{}}
	seen := make(map[string]struct{}, len(req.InviteeIds))
	for _, inviteeId := range req.InviteeIds {
		if inviteeId == "" {
			continue
		}
		if _, ok := seen[inviteeId]; ok {
			continue
		}
		seen[inviteeId] = struct{}{}

		// 已是成员：跳过
		if _, err := s.repos.GroupMember.FindByGroupAndUser(req.GroupId, inviteeId); err == nil {
			result.SkippedCount++
			continue
		} else if !errorx.IsNotFound(err) {
			return nil, err
		}

		// 已有待处理邀请：未过期则跳过，已过期则先惰性置为 EXPIRED 再重新邀请
		if existing, err := s.repos.Invitation.FindPendingByGroupAndInvitee(req.GroupId, inviteeId); err == nil {
			if !existing.IsExpired(now) {
				result.SkippedCount++
				continue
			}
			if err := s.repos.Invitation.MarkExpired(existing.Uuid); err != nil {
				zap.L().Warn("过期邀请状态更新失败", zap.String("invitationId", existing.Uuid), zap.Error(err))
				result.SkippedCount++
				continue
			}
		} else if !errorx.IsNotFound(err) {
			return nil, err
		}

		pending := int8(1)
		inv := &model.GroupInvitation{
			Uuid:        uuid.NewString(),
			GroupUuid:   req.GroupId,
			InviterUuid: actorId,
			InviteeUuid: inviteeId,
			Status:      invitation_status_enum.PENDING,
			Pending:     &pending,
			ExpiresAt:   now.Add(constants.INVITATION_EXPIRY),
		}
		if err := s.repos.Invitation.Create(inv); err != nil {
			// 并发下另一请求刚创建了待处理邀请，按跳过处理
			if errorx.GetCode(err) == errorx.CodePendingInvite {
				result.SkippedCount++
				continue
			}
			return nil, err
		}
		result.CreatedCount++
		result.Invitations = append(result.Invitations, *invitationToRespond(inv, ""))
		s.publishEvent(mq.EventInvitationCreated, req.GroupId, inviteeId, actorId)
	}

	zap.L().Info("批量邀请完成",
		zap.String("groupId", req.GroupId),
		zap.String("actorId", actorId),
		zap.Int("created", result.CreatedCount),
		zap.Int("skipped", result.SkippedCount),
	)
	return result, nil
}

// Respond 接受或拒绝邀请
// 只有被邀请人可响应；已过期的待处理邀请先惰性置为 EXPIRED 再拒绝本次响应；
// 接受时成员行、计数、邀请状态在同一事务内落定
func (s *invitationService) Respond(actorId, invitationId string, accept bool) (*respond.RespondInvitationRespond, error) {
	inv, err := s.repos.Invitation.FindByUuid(invitationId)
	if err != nil {
		return nil, err
	}
	if inv.InviteeUuid != actorId {
		return nil, errorx.ErrForbidden
	}
	if inv.Status != invitation_status_enum.PENDING {
		return nil, errorx.ErrAlreadyResponded
	}
	now := time.Now()
	if inv.IsExpired(now) {
		if err := s.repos.Invitation.MarkExpired(inv.Uuid); err != nil {
			zap.L().Warn("过期邀请状态更新失败", zap.String("invitationId", inv.Uuid), zap.Error(err))
		}
		return nil, errorx.ErrInviteExpired
	}

	if !accept {
		if err := s.repos.Invitation.MarkResponded(inv.Uuid, invitation_status_enum.DECLINED, now); err != nil {
			return nil, err
		}
		inv.Status = invitation_status_enum.DECLINED
		inv.RespondedAt = &now
		zap.L().Info("邀请已拒绝", zap.String("invitationId", inv.Uuid), zap.String("inviteeId", actorId))
		s.publishEvent(mq.EventInvitationDeclined, inv.GroupUuid, actorId, actorId)
		return &respond.RespondInvitationRespond{Invitation: *invitationToRespond(inv, "")}, nil
	}

	var member *model.GroupMember
	var groupName string
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		group, err := tx.Group.FindByUuidForUpdate(inv.GroupUuid)
		if err != nil {
			return err
		}
		groupName = group.Name
		// 先落邀请终态：若并发响应已抢先，这里返回 AlreadyResponded 并回滚
		if err := tx.Invitation.MarkResponded(inv.Uuid, invitation_status_enum.ACCEPTED, now); err != nil {
			return err
		}
		member = &model.GroupMember{
			GroupUuid: inv.GroupUuid,
			UserUuid:  actorId,
			Role:      role_enum.MEMBER,
			InvitedBy: inv.InviterUuid,
			JoinedAt:  now,
		}
		if err := tx.GroupMember.Create(member); err != nil {
			return err
		}
		return tx.Group.IncrementMemberCnt(inv.GroupUuid)
	})
	if err != nil {
		return nil, err
	}
	inv.Status = invitation_status_enum.ACCEPTED
	inv.RespondedAt = &now

	zap.L().Info("邀请已接受",
		zap.String("invitationId", inv.Uuid),
		zap.String("groupId", inv.GroupUuid),
		zap.String("inviteeId", actorId),
	)
	s.publishEvent(mq.EventInvitationAccepted, inv.GroupUuid, actorId, actorId)
	s.invalidateGroupCache(inv.GroupUuid)

	memberRespond := &respond.GroupMemberRespond{
		GroupId:   member.GroupUuid,
		UserId:    member.UserUuid,
		Role:      member.Role,
		InvitedBy: member.InvitedBy,
		JoinedAt:  member.JoinedAt.Format(time.DateTime),
	}
	return &respond.RespondInvitationRespond{
		Invitation: *invitationToRespond(inv, groupName),
		Member:     memberRespond,
		Suggestion: s.suggestion.SuggestForJoin(actorId, groupName),
	}, nil
}

// Cancel 撤销待处理邀请
// 与拒绝不同，撤销直接删除邀请行：邀请从未被受邀人处理过
func (s *invitationService) Cancel(actorId, invitationId string) error {
	inv, err := s.repos.Invitation.FindByUuid(invitationId)
	if err != nil {
		return err
	}
	if err := s.requireManager(inv.GroupUuid, actorId); err != nil {
		return err
	}
	if inv.Status != invitation_status_enum.PENDING {
		return errorx.ErrAlreadyResponded
	}
	if err := s.repos.Invitation.Delete(inv.Uuid); err != nil {
		return err
	}
	zap.L().Info("邀请已撤销",
		zap.String("invitationId", inv.Uuid),
		zap.String("groupId", inv.GroupUuid),
		zap.String("actorId", actorId),
	)
	return nil
}

// ListPendingForUser 当前用户所有未过期的待处理邀请，附带群名称
func (s *invitationService) ListPendingForUser(actorId string) ([]respond.InvitationRespond, error) {
	rows, err := s.repos.Invitation.FindPendingByInvitee(actorId, time.Now())
	if err != nil {
		return nil, err
	}
	list := make([]respond.InvitationRespond, 0, len(rows))
	for i := range rows {
		list = append(list, *invitationToRespond(&rows[i], s.groupName(rows[i].GroupUuid)))
	}
	return list, nil
}

// ListPendingForGroup 群组所有待处理邀请
// 已过期的待处理邀请在此惰性置为 EXPIRED 并从结果中剔除
func (s *invitationService) ListPendingForGroup(actorId, groupId string) ([]respond.InvitationRespond, error) {
	if _, err := s.repos.Group.FindByUuid(groupId); err != nil {
		return nil, err
	}
	if err := s.requireManager(groupId, actorId); err != nil {
		return nil, err
	}

	rows, err := s.repos.Invitation.FindPendingByGroup(groupId)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	list := make([]respond.InvitationRespond, 0, len(rows))
	for i := range rows {
		inv := &rows[i]
		if inv.IsExpired(now) {
			if err := s.repos.Invitation.MarkExpired(inv.Uuid); err != nil {
				zap.L().Warn("过期邀请状态更新失败", zap.String("invitationId", inv.Uuid), zap.Error(err))
			}
			continue
		}
		list = append(list, *invitationToRespond(inv, ""))
	}
	return list, nil
}

// ==================== 内部辅助 ====================

// requireManager 要求操作者是群主或管理员，非成员一律视为无权限
func (s *invitationService) requireManager(groupId, actorId string) error {
	member, err := s.repos.GroupMember.FindByGroupAndUser(groupId, actorId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrForbidden
		}
		return err
	}
	if !policy.CanManageMembers(member.Role) {
		return errorx.ErrForbidden
	}
	return nil
}

// groupName 查询群名称用于列表展示，查不到时返回空
func (s *invitationService) groupName(groupId string) string {
	group, err := s.repos.Group.FindByUuid(groupId)
	if err != nil {
		return ""
	}
	return group.Name
}

// invalidateGroupCache 异步失效群组相关缓存（接受邀请改变了成员与计数）
func (s *invitationService) invalidateGroupCache(groupId string) {
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

// publishEvent 事务提交后投递邀请事件
func (s *invitationService) publishEvent(eventType, groupId, userId, actorId string) {
	s.producer.Publish(mq.GroupEvent{
		Type:       eventType,
		GroupId:    groupId,
		UserId:     userId,
		ActorId:    actorId,
		OccurredAt: time.Now(),
	})
}

func invitationToRespond(inv *model.GroupInvitation, groupName string) *respond.InvitationRespond {
	return &respond.InvitationRespond{
		InvitationId: inv.Uuid,
		GroupId:      inv.GroupUuid,
		GroupName:    groupName,
		InviterId:    inv.InviterUuid,
		InviteeId:    inv.InviteeUuid,
		Status:       inv.Status,
		ExpiresAt:    inv.ExpiresAt.Format(time.DateTime),
		CreatedAt:    inv.CreatedAt.Format(time.DateTime),
	}
}
