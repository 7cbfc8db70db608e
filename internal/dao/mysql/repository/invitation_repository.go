// Package repository 提供数据访问层的具体实现
// 本文件实现 InvitationRepository 接口，处理群邀请相关的数据库操作
package repository

import (
	"time"

	"memora_group_server/internal/model"
	"memora_group_server/pkg/enum/invitation/invitation_status_enum"
	"memora_group_server/pkg/errorx"

	"gorm.io/gorm"
)

// invitationRepository InvitationRepository 接口的实现
type invitationRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewInvitationRepository 创建 InvitationRepository 实例
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

// FindByUuid 根据 UUID 查找邀请
func (r *invitationRepository) FindByUuid(uuid string) (*model.GroupInvitation, error) {
	var invitation model.GroupInvitation
	if err := r.db.First(&invitation, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询邀请 uuid=%s", uuid)
	}
	return &invitation, nil
}

// FindPendingByGroupAndInvitee 查找 (群, 被邀请人) 的待处理邀请
func (r *invitationRepository) FindPendingByGroupAndInvitee(groupUuid, inviteeUuid string) (*model.GroupInvitation, error) {
	var invitation model.GroupInvitation
	if err := r.db.Where("group_uuid = ? AND invitee_uuid = ? AND status = ?",
		groupUuid, inviteeUuid, invitation_status_enum.PENDING).
		First(&invitation).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询待处理邀请 group_uuid=%s invitee_uuid=%s", groupUuid, inviteeUuid)
	}
	return &invitation, nil
}

// FindPendingByInvitee 查找用户所有未过期的待处理邀请
// 过期判定放在 SQL 里，已过期的行留给响应路径做惰性状态转移
func (r *invitationRepository) FindPendingByInvitee(inviteeUuid string, now time.Time) ([]model.GroupInvitation, error) {
	var invitations []model.GroupInvitation
	if err := r.db.Where("invitee_uuid = ? AND status = ? AND expires_at > ?",
		inviteeUuid, invitation_status_enum.PENDING, now).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户待处理邀请 invitee_uuid=%s", inviteeUuid)
	}
	return invitations, nil
}

// FindPendingByGroup 查找群组所有待处理邀请
func (r *invitationRepository) FindPendingByGroup(groupUuid string) ([]model.GroupInvitation, error) {
	var invitations []model.GroupInvitation
	if err := r.db.Where("group_uuid = ? AND status = ?",
		groupUuid, invitation_status_enum.PENDING).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群待处理邀请 group_uuid=%s", groupUuid)
	}
	return invitations, nil
}

// Create 创建邀请
// idx_group_invitee_pending 唯一索引冲突映射为 CodePendingInvite，
// 并发重复邀请时由该索引保证至多一条待处理
func (r *invitationRepository) Create(invitation *model.GroupInvitation) error {
	if err := r.db.Create(invitation).Error; err != nil {
		return wrapCreateError(err, errorx.CodePendingInvite, "创建邀请")
	}
	return nil
}

// MarkResponded 将待处理邀请置为终态（接受/拒绝）并清除 pending 标记
// WHERE 条件限定 status = PENDING：并发的两次响应只有一次生效
func (r *invitationRepository) MarkResponded(uuid string, status int8, respondedAt time.Time) error {
	result := r.db.Model(&model.GroupInvitation{}).
		Where("uuid = ? AND status = ?", uuid, invitation_status_enum.PENDING).
		Updates(map[string]interface{}{
			"status":       status,
			"pending":      nil,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return wrapDBErrorf(result.Error, "更新邀请状态 uuid=%s", uuid)
	}
	if result.RowsAffected == 0 {
		return errorx.ErrAlreadyResponded
	}
	return nil
}

// MarkExpired 将过期的待处理邀请置为 EXPIRED
// 同样限定 status = PENDING，状态转移只发生一次
func (r *invitationRepository) MarkExpired(uuid string) error {
	result := r.db.Model(&model.GroupInvitation{}).
		Where("uuid = ? AND status = ?", uuid, invitation_status_enum.PENDING).
		Updates(map[string]interface{}{
			"status":  invitation_status_enum.EXPIRED,
			"pending": nil,
		})
	if result.Error != nil {
		return wrapDBErrorf(result.Error, "过期邀请 uuid=%s", uuid)
	}
	return nil
}

// Delete 删除邀请（管理员撤销）
func (r *invitationRepository) Delete(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.GroupInvitation{}).Error; err != nil {
		return wrapDBErrorf(err, "删除邀请 uuid=%s", uuid)
	}
	return nil
}

// DeleteByGroupUuid 删除群组所有邀请
// 用于删除群组时清理邀请数据
func (r *invitationRepository) DeleteByGroupUuid(groupUuid string) error {
	if err := r.db.Where("group_uuid = ?", groupUuid).Delete(&model.GroupInvitation{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群所有邀请 group_uuid=%s", groupUuid)
	}
	return nil
}
