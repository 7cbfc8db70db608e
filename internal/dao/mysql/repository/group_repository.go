// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupRepository 接口，处理群组相关的数据库操作
package repository

import (
	"memora_group_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// groupRepository GroupRepository 接口的实现
type groupRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewGroupRepository 创建 GroupRepository 实例
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByUuid 根据 UUID 查找群组
func (r *groupRepository) FindByUuid(uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

// FindByUuidForUpdate 根据 UUID 查找群组并加行锁（SELECT ... FOR UPDATE）
// 必须在事务内调用，否则锁立即释放没有意义
func (r *groupRepository) FindByUuidForUpdate(uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "锁定群组 uuid=%s", uuid)
	}
	return &group, nil
}

// Create 创建群组
func (r *groupRepository) Create(group *model.GroupInfo) error {
	if err := r.db.Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

// Update 更新群组信息（全字段更新）
func (r *groupRepository) Update(group *model.GroupInfo) error {
	if err := r.db.Save(group).Error; err != nil {
		return wrapDBError(err, "更新群组")
	}
	return nil
}

// IncrementMemberCnt 增加群成员计数
// 使用 UpdateColumn + gorm.Expr 实现原子自增
func (r *groupRepository) IncrementMemberCnt(uuid string) error {
	if err := r.db.Model(&model.GroupInfo{}).Where("uuid = ?", uuid).
		UpdateColumn("member_cnt", gorm.Expr("member_cnt + ?", 1)).Error; err != nil {
		return wrapDBErrorf(err, "增加群成员数 uuid=%s", uuid)
	}
	return nil
}

// DecrementMemberCntBy 减少指定数量的群成员计数
func (r *groupRepository) DecrementMemberCntBy(uuid string, count int) error {
	if count <= 0 {
		return nil
	}
	if err := r.db.Model(&model.GroupInfo{}).Where("uuid = ?", uuid).
		UpdateColumn("member_cnt", gorm.Expr("member_cnt - ?", count)).Error; err != nil {
		return wrapDBErrorf(err, "减少群成员数 uuid=%s count=%d", uuid, count)
	}
	return nil
}

// Delete 删除群组
// 级联的成员、邀请删除由 Service 层在同一事务内完成
func (r *groupRepository) Delete(uuid string) error {
	if err := r.db.Unscoped().Where("uuid = ?", uuid).Delete(&model.GroupInfo{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群组 uuid=%s", uuid)
	}
	return nil
}
