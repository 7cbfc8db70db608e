package model

import (
	"gorm.io/gorm"
)

// RelationshipCategory 用户的关系分类（工作、学校、爱好等）
// 关系建议启发式只读取这两张表，不做任何写入
type RelationshipCategory struct {
	gorm.Model
	UserUuid string `gorm:"column:user_uuid;index;type:char(20);not null;comment:所属用户uuid"`
	Kind     string `gorm:"column:kind;type:varchar(20);not null;comment:分类类型，如 work/school/hobby"`
	Name     string `gorm:"column:name;type:varchar(50);not null;comment:分类显示名"`
}

func (RelationshipCategory) TableName() string {
	return "relationship_category"
}

// RelationshipSubcategory 关系子分类，通常以群组名命名
type RelationshipSubcategory struct {
	gorm.Model
	CategoryId uint   `gorm:"column:category_id;index;not null;comment:所属分类ID"`
	Name       string `gorm:"column:name;type:varchar(50);not null;comment:子分类名"`
}

func (RelationshipSubcategory) TableName() string {
	return "relationship_subcategory"
}
