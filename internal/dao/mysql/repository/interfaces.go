// Package repository 定义数据访问层接口和聚合结构
package repository

import (
	"time"

	"memora_group_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	// FindByUuid 根据 UUID 查找群组
	FindByUuid(uuid string) (*model.GroupInfo, error)
	// FindByUuidForUpdate 根据 UUID 查找群组并加行锁
	// 成员变更事务以此串行化同一群组上的并发修改（群主转让、并发退群等）
	FindByUuidForUpdate(uuid string) (*model.GroupInfo, error)
	// Create 创建新群组
	Create(group *model.GroupInfo) error
	// Update 更新群组信息
	Update(group *model.GroupInfo) error
	// IncrementMemberCnt 群成员计数 +1（原子自增）
	IncrementMemberCnt(uuid string) error
	// DecrementMemberCntBy 群成员计数减少指定数量
	DecrementMemberCntBy(uuid string, count int) error
	// Delete 删除群组（硬删除，需与成员、邀请的级联删除同事务）
	Delete(uuid string) error
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	// FindByGroupAndUser 根据群组和用户查找成员关系
	FindByGroupAndUser(groupUuid, userUuid string) (*model.GroupMember, error)
	// FindByGroupUuid 查找群组所有成员
	FindByGroupUuid(groupUuid string) ([]model.GroupMember, error)
	// FindOwner 查找群主成员行
	FindOwner(groupUuid string) (*model.GroupMember, error)
	// FindMembersWithUserInfo 查找群成员（含用户资料，JOIN user_info）
	FindMembersWithUserInfo(groupUuid string) ([]GroupMemberWithUserInfo, error)
	// CountByGroupUuid 统计群成员数
	CountByGroupUuid(groupUuid string) (int64, error)
	// Create 添加群成员；(group,user) 冲突返回 CodeAlreadyMember
	Create(member *model.GroupMember) error
	// UpdateRole 更新成员角色
	UpdateRole(groupUuid, userUuid string, role int8) error
	// Delete 删除单个群成员
	Delete(groupUuid, userUuid string) error
	// DeleteByGroupUuid 删除群组所有成员（解散群组用）
	DeleteByGroupUuid(groupUuid string) error
}

// InvitationRepository 群邀请数据访问接口
type InvitationRepository interface {
	// FindByUuid 根据 UUID 查找邀请
	FindByUuid(uuid string) (*model.GroupInvitation, error)
	// FindPendingByGroupAndInvitee 查找 (群, 被邀请人) 的待处理邀请
	FindPendingByGroupAndInvitee(groupUuid, inviteeUuid string) (*model.GroupInvitation, error)
	// FindPendingByInvitee 查找用户所有未过期的待处理邀请
	FindPendingByInvitee(inviteeUuid string, now time.Time) ([]model.GroupInvitation, error)
	// FindPendingByGroup 查找群组所有待处理邀请
	FindPendingByGroup(groupUuid string) ([]model.GroupInvitation, error)
	// Create 创建邀请；(group,invitee) 已有待处理邀请时返回 CodePendingInvite
	Create(invitation *model.GroupInvitation) error
	// MarkResponded 将待处理邀请置为终态（接受/拒绝）并清除 pending 标记
	MarkResponded(uuid string, status int8, respondedAt time.Time) error
	// MarkExpired 将过期的待处理邀请置为 EXPIRED（惰性过期，只发生一次）
	MarkExpired(uuid string) error
	// Delete 删除邀请（管理员撤销，区别于拒绝：行直接移除）
	Delete(uuid string) error
	// DeleteByGroupUuid 删除群组所有邀请（解散群组用）
	DeleteByGroupUuid(groupUuid string) error
}

// RelationshipRepository 关系分类数据访问接口
// 关系建议启发式只读，不提供写入方法
type RelationshipRepository interface {
	// FindCategoryByUserAndKind 查找用户指定类型的关系分类
	FindCategoryByUserAndKind(userUuid, kind string) (*model.RelationshipCategory, error)
	// FindSubcategoryByName 查找分类下指定名称的子分类
	FindSubcategoryByName(categoryId uint, name string) (*model.RelationshipSubcategory, error)
}

// UserRepository 用户数据访问接口
// 仅提供成员列表展示所需的查询，账号生命周期由外部身份服务管理
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
}

// ==================== 复合结构 ====================

// GroupMemberWithUserInfo 群成员详细信息（含用户资料）
// 用于群成员列表展示
type GroupMemberWithUserInfo struct {
	UserId   string    `json:"userId"`   // 用户 UUID
	Nickname string    `json:"nickname"` // 用户昵称
	Avatar   string    `json:"avatar"`   // 用户头像
	Role     int8      `json:"role"`     // 成员角色
	JoinedAt time.Time `json:"joinedAt"` // 加入时间
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db           *gorm.DB               // GORM 数据库实例
	Group        GroupRepository        // 群组 Repository
	GroupMember  GroupMemberRepository  // 群成员 Repository
	Invitation   InvitationRepository   // 群邀请 Repository
	Relationship RelationshipRepository // 关系分类 Repository
	User         UserRepository         // 用户 Repository
}

// NewRepositories 创建所有 Repository 实例
// 接收 GORM 数据库实例，初始化并返回 Repositories 聚合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Group:        NewGroupRepository(db),
		GroupMember:  NewGroupMemberRepository(db),
		Invitation:   NewInvitationRepository(db),
		Relationship: NewRelationshipRepository(db),
		User:         NewUserRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
//
// 聚合未携带 db 句柄时（字段由外部手工注入，如内存实现）直接执行 fn，
// 此时原子性由注入方保证
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 使用事务 db 创建新的 Repositories 实例
		return fn(NewRepositories(tx))
	})
}
