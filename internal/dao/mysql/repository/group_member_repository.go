// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupMemberRepository 接口，处理群成员相关的数据库操作
package repository

import (
	"memora_group_server/internal/model"
	"memora_group_server/pkg/enum/group_member/role_enum"
	"memora_group_server/pkg/errorx"

	"gorm.io/gorm"
)

// groupMemberRepository GroupMemberRepository 接口的实现
type groupMemberRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewGroupMemberRepository 创建 GroupMemberRepository 实例
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// FindByGroupAndUser 根据群组和用户查找成员关系
// 用于检查用户是否已在群中以及读取操作者角色
func (r *groupMemberRepository) FindByGroupAndUser(groupUuid, userUuid string) (*model.GroupMember, error) {
	var member model.GroupMember
	if err := r.db.Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &member, nil
}

// FindByGroupUuid 根据群组UUID查找所有成员
func (r *groupMemberRepository) FindByGroupUuid(groupUuid string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	if err := r.db.Where("group_uuid = ?", groupUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s", groupUuid)
	}
	return members, nil
}

// FindOwner 查找群主成员行
func (r *groupMemberRepository) FindOwner(groupUuid string) (*model.GroupMember, error) {
	var member model.GroupMember
	if err := r.db.Where("group_uuid = ? AND role = ?", groupUuid, role_enum.OWNER).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群主 group_uuid=%s", groupUuid)
	}
	return &member, nil
}

// FindMembersWithUserInfo 查询群成员详细信息（包含用户基本资料）
// 通过 JOIN 查询关联用户表获取昵称和头像
func (r *groupMemberRepository) FindMembersWithUserInfo(groupUuid string) ([]GroupMemberWithUserInfo, error) {
	var members []GroupMemberWithUserInfo
	// 使用 LEFT JOIN 关联 user_info 表
	if err := r.db.Table("group_member").
		Select("group_member.user_uuid as user_id, user_info.nickname, user_info.avatar, group_member.role, group_member.joined_at").
		Joins("LEFT JOIN user_info ON group_member.user_uuid = user_info.uuid").
		Where("group_member.group_uuid = ?", groupUuid).
		Scan(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员详情 group_uuid=%s", groupUuid)
	}
	return members, nil
}

// CountByGroupUuid 统计群成员数
func (r *groupMemberRepository) CountByGroupUuid(groupUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.GroupMember{}).Where("group_uuid = ?", groupUuid).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计群成员数 group_uuid=%s", groupUuid)
	}
	return count, nil
}

// Create 添加群成员
// (group_uuid, user_uuid) 唯一索引冲突映射为 CodeAlreadyMember，
// 并发加入时由该索引保证恰好一个成功
func (r *groupMemberRepository) Create(member *model.GroupMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapCreateError(err, errorx.CodeAlreadyMember, "创建群成员")
	}
	return nil
}

// UpdateRole 更新成员角色
func (r *groupMemberRepository) UpdateRole(groupUuid, userUuid string, role int8) error {
	result := r.db.Model(&model.GroupMember{}).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Update("role", role)
	if result.Error != nil {
		return wrapDBErrorf(result.Error, "更新成员角色 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	if result.RowsAffected == 0 {
		return errorx.Newf(errorx.CodeNotFound, "群成员不存在 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return nil
}

// Delete 删除单个群成员（硬删除，复用唯一索引）
func (r *groupMemberRepository) Delete(groupUuid, userUuid string) error {
	if err := r.db.Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Delete(&model.GroupMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return nil
}

// DeleteByGroupUuid 删除群组的所有成员
// 用于删除群组时清理成员数据
func (r *groupMemberRepository) DeleteByGroupUuid(groupUuid string) error {
	if err := r.db.Where("group_uuid = ?", groupUuid).Delete(&model.GroupMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群所有成员 group_uuid=%s", groupUuid)
	}
	return nil
}
