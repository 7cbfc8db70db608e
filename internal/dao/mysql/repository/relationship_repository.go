// Package repository 提供数据访问层的具体实现
// 本文件实现 RelationshipRepository 接口，供关系建议启发式只读查询
package repository

import (
	"memora_group_server/internal/model"

	"gorm.io/gorm"
)

// relationshipRepository RelationshipRepository 接口的实现
type relationshipRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewRelationshipRepository 创建 RelationshipRepository 实例
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

// FindCategoryByUserAndKind 查找用户指定类型的关系分类
func (r *relationshipRepository) FindCategoryByUserAndKind(userUuid, kind string) (*model.RelationshipCategory, error) {
	var category model.RelationshipCategory
	if err := r.db.Where("user_uuid = ? AND kind = ?", userUuid, kind).
		First(&category).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询关系分类 user_uuid=%s kind=%s", userUuid, kind)
	}
	return &category, nil
}

// FindSubcategoryByName 查找分类下指定名称的子分类
func (r *relationshipRepository) FindSubcategoryByName(categoryId uint, name string) (*model.RelationshipSubcategory, error) {
	var subcategory model.RelationshipSubcategory
	if err := r.db.Where("category_id = ? AND name = ?", categoryId, name).
		First(&subcategory).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询关系子分类 category_id=%d name=%s", categoryId, name)
	}
	return &subcategory, nil
}
