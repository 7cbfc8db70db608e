// Package memory 提供 repository 接口的内存实现
// 供业务层测试使用，错误语义与 MySQL 实现保持一致：
// 唯一键冲突返回对应的领域错误码，未命中返回 NotFound
package memory

import (
	"sort"
	"sync"
	"time"

	"memora_group_server/internal/dao/mysql/repository"
	"memora_group_server/internal/model"
	"memora_group_server/pkg/enum/group_member/role_enum"
	"memora_group_server/pkg/enum/invitation/invitation_status_enum"
	"memora_group_server/pkg/errorx"
)

// Store 内存数据集，所有仓储实现共享同一份数据
type Store struct {
	mu            sync.Mutex
	groups        map[string]*model.GroupInfo
	members       map[string]*model.GroupMember
	invitations   map[string]*model.GroupInvitation
	users         map[string]*model.UserInfo
	categories    []model.RelationshipCategory
	subcategories []model.RelationshipSubcategory
	nextId        uint
}

// NewStore 创建空的内存数据集
func NewStore() *Store {
	return &Store{
		groups:      make(map[string]*model.GroupInfo),
		members:     make(map[string]*model.GroupMember),
		invitations: make(map[string]*model.GroupInvitation),
		users:       make(map[string]*model.UserInfo),
	}
}

// Repositories 基于本数据集构造仓储聚合
// 聚合不携带 db 句柄，Transaction 直接执行闭包
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Group:        &groupRepo{s},
		GroupMember:  &memberRepo{s},
		Invitation:   &invitationRepo{s},
		Relationship: &relationshipRepo{s},
		User:         &userRepo{s},
	}
}

// AddUser 预置用户资料
func (s *Store) AddUser(user model.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.users[u.Uuid] = &u
}

// AddCategory 预置关系分类，返回分配的 ID
func (s *Store) AddCategory(category model.RelationshipCategory) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextId++
	category.ID = s.nextId
	s.categories = append(s.categories, category)
	return category.ID
}

// AddSubcategory 预置关系子分类
func (s *Store) AddSubcategory(subcategory model.RelationshipSubcategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subcategories = append(s.subcategories, subcategory)
}

func memberKey(groupUuid, userUuid string) string {
	return groupUuid + "|" + userUuid
}

// ==================== GroupRepository ====================

type groupRepo struct{ store *Store }

func (r *groupRepo) FindByUuid(uuid string) (*model.GroupInfo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	group, ok := r.store.groups[uuid]
	if !ok {
		return nil, errorx.Newf(errorx.CodeNotFound, "群组 %s 不存在", uuid)
	}
	clone := *group
	return &clone, nil
}

func (r *groupRepo) FindByUuidForUpdate(uuid string) (*model.GroupInfo, error) {
	return r.FindByUuid(uuid)
}

func (r *groupRepo) Create(group *model.GroupInfo) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextId++
	group.ID = r.store.nextId
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}
	clone := *group
	r.store.groups[group.Uuid] = &clone
	return nil
}

func (r *groupRepo) Update(group *model.GroupInfo) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.groups[group.Uuid]; !ok {
		return errorx.Newf(errorx.CodeNotFound, "群组 %s 不存在", group.Uuid)
	}
	clone := *group
	r.store.groups[group.Uuid] = &clone
	return nil
}

func (r *groupRepo) IncrementMemberCnt(uuid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	group, ok := r.store.groups[uuid]
	if !ok {
		return errorx.Newf(errorx.CodeNotFound, "群组 %s 不存在", uuid)
	}
	group.MemberCnt++
	return nil
}

func (r *groupRepo) DecrementMemberCntBy(uuid string, count int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	group, ok := r.store.groups[uuid]
	if !ok {
		return errorx.Newf(errorx.CodeNotFound, "群组 %s 不存在", uuid)
	}
	group.MemberCnt -= count
	return nil
}

func (r *groupRepo) Delete(uuid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.groups, uuid)
	return nil
}

// ==================== GroupMemberRepository ====================

type memberRepo struct{ store *Store }

func (r *memberRepo) FindByGroupAndUser(groupUuid, userUuid string) (*model.GroupMember, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	member, ok := r.store.members[memberKey(groupUuid, userUuid)]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "成员关系不存在")
	}
	clone := *member
	return &clone, nil
}

func (r *memberRepo) FindByGroupUuid(groupUuid string) ([]model.GroupMember, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []model.GroupMember
	for _, member := range r.store.members {
		if member.GroupUuid == groupUuid {
			result = append(result, *member)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memberRepo) FindOwner(groupUuid string) (*model.GroupMember, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, member := range r.store.members {
		if member.GroupUuid == groupUuid && member.Role == role_enum.OWNER {
			clone := *member
			return &clone, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "群主不存在")
}

func (r *memberRepo) FindMembersWithUserInfo(groupUuid string) ([]repository.GroupMemberWithUserInfo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var rows []repository.GroupMemberWithUserInfo
	for _, member := range r.store.members {
		if member.GroupUuid != groupUuid {
			continue
		}
		row := repository.GroupMemberWithUserInfo{
			UserId:   member.UserUuid,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		}
		if user, ok := r.store.users[member.UserUuid]; ok {
			row.Nickname = user.Nickname
			row.Avatar = user.Avatar
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].JoinedAt.Before(rows[j].JoinedAt) })
	return rows, nil
}

func (r *memberRepo) CountByGroupUuid(groupUuid string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var cnt int64
	for _, member := range r.store.members {
		if member.GroupUuid == groupUuid {
			cnt++
		}
	}
	return cnt, nil
}

func (r *memberRepo) Create(member *model.GroupMember) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := memberKey(member.GroupUuid, member.UserUuid)
	if _, ok := r.store.members[key]; ok {
		return errorx.New(errorx.CodeAlreadyMember, "用户已是群成员")
	}
	r.store.nextId++
	member.ID = r.store.nextId
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	clone := *member
	r.store.members[key] = &clone
	return nil
}

func (r *memberRepo) UpdateRole(groupUuid, userUuid string, role int8) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	member, ok := r.store.members[memberKey(groupUuid, userUuid)]
	if !ok {
		return errorx.New(errorx.CodeNotFound, "成员关系不存在")
	}
	member.Role = role
	return nil
}

func (r *memberRepo) Delete(groupUuid, userUuid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := memberKey(groupUuid, userUuid)
	if _, ok := r.store.members[key]; !ok {
		return errorx.New(errorx.CodeNotFound, "成员关系不存在")
	}
	delete(r.store.members, key)
	return nil
}

func (r *memberRepo) DeleteByGroupUuid(groupUuid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for key, member := range r.store.members {
		if member.GroupUuid == groupUuid {
			delete(r.store.members, key)
		}
	}
	return nil
}

// ==================== InvitationRepository ====================

type invitationRepo struct{ store *Store }

func (r *invitationRepo) FindByUuid(uuid string) (*model.GroupInvitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	inv, ok := r.store.invitations[uuid]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "邀请不存在")
	}
	clone := *inv
	return &clone, nil
}

func (r *invitationRepo) FindPendingByGroupAndInvitee(groupUuid, inviteeUuid string) (*model.GroupInvitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, inv := range r.store.invitations {
		if inv.GroupUuid == groupUuid && inv.InviteeUuid == inviteeUuid &&
			inv.Status == invitation_status_enum.PENDING {
			clone := *inv
			return &clone, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "待处理邀请不存在")
}

func (r *invitationRepo) FindPendingByInvitee(inviteeUuid string, now time.Time) ([]model.GroupInvitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []model.GroupInvitation
	for _, inv := range r.store.invitations {
		if inv.InviteeUuid == inviteeUuid && inv.Status == invitation_status_enum.PENDING &&
			inv.ExpiresAt.After(now) {
			result = append(result, *inv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *invitationRepo) FindPendingByGroup(groupUuid string) ([]model.GroupInvitation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []model.GroupInvitation
	for _, inv := range r.store.invitations {
		if inv.GroupUuid == groupUuid && inv.Status == invitation_status_enum.PENDING {
			result = append(result, *inv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *invitationRepo) Create(invitation *model.GroupInvitation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, inv := range r.store.invitations {
		if inv.GroupUuid == invitation.GroupUuid && inv.InviteeUuid == invitation.InviteeUuid &&
			inv.Pending != nil {
			return errorx.New(errorx.CodePendingInvite, "已存在待处理邀请")
		}
	}
	r.store.nextId++
	invitation.ID = r.store.nextId
	if invitation.CreatedAt.IsZero() {
		invitation.CreatedAt = time.Now()
	}
	clone := *invitation
	r.store.invitations[invitation.Uuid] = &clone
	return nil
}

func (r *invitationRepo) MarkResponded(uuid string, status int8, respondedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	inv, ok := r.store.invitations[uuid]
	if !ok {
		return errorx.New(errorx.CodeNotFound, "邀请不存在")
	}
	if inv.Status != invitation_status_enum.PENDING {
		return errorx.ErrAlreadyResponded
	}
	inv.Status = status
	inv.Pending = nil
	at := respondedAt
	inv.RespondedAt = &at
	return nil
}

func (r *invitationRepo) MarkExpired(uuid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	inv, ok := r.store.invitations[uuid]
	if !ok {
		return errorx.New(errorx.CodeNotFound, "邀请不存在")
	}
	if inv.Status != invitation_status_enum.PENDING {
		return nil
	}
	inv.Status = invitation_status_enum.EXPIRED
	inv.Pending = nil
	return nil
}

func (r *invitationRepo) Delete(uuid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.invitations, uuid)
	return nil
}

func (r *invitationRepo) DeleteByGroupUuid(groupUuid string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for key, inv := range r.store.invitations {
		if inv.GroupUuid == groupUuid {
			delete(r.store.invitations, key)
		}
	}
	return nil
}

// ==================== RelationshipRepository ====================

type relationshipRepo struct{ store *Store }

func (r *relationshipRepo) FindCategoryByUserAndKind(userUuid, kind string) (*model.RelationshipCategory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.categories {
		c := r.store.categories[i]
		if c.UserUuid == userUuid && c.Kind == kind {
			return &c, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "关系分类不存在")
}

func (r *relationshipRepo) FindSubcategoryByName(categoryId uint, name string) (*model.RelationshipSubcategory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.subcategories {
		sc := r.store.subcategories[i]
		if sc.CategoryId == categoryId && sc.Name == name {
			return &sc, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "关系子分类不存在")
}

// ==================== UserRepository ====================

type userRepo struct{ store *Store }

func (r *userRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[uuid]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
	}
	clone := *user
	return &clone, nil
}

func (r *userRepo) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []model.UserInfo
	for _, uuid := range uuids {
		if user, ok := r.store.users[uuid]; ok {
			result = append(result, *user)
		}
	}
	return result, nil
}
