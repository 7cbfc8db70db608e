package invitation

import (
	"context"
	"sync"
	"testing"
	"time"

	"memora_group_server/internal/dao/mysql/repository"
	"memora_group_server/internal/dao/mysql/repository/memory"
	"memora_group_server/internal/dto/request"
	"memora_group_server/internal/infrastructure/mq"
	"memora_group_server/internal/model"
	"memora_group_server/internal/service"
	"memora_group_server/internal/service/group"
	"memora_group_server/internal/service/suggestion"
	"memora_group_server/pkg/enum/group_member/role_enum"
	"memora_group_server/pkg/enum/invitation/invitation_status_enum"
	"memora_group_server/pkg/errorx"
)

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, _ string) error { return nil }

func (c *fakeCache) SubmitTask(action func()) { action() }

type fakeProducer struct {
	mu     sync.Mutex
	events []mq.GroupEvent
}

func (p *fakeProducer) Publish(event mq.GroupEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakeProducer) Close() {}

// testEnv 邀请服务测试环境，群组通过真实群组服务创建
type testEnv struct {
	invitations service.InvitationService
	groups      service.GroupService
	repos       *repository.Repositories
	store       *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	cache := newFakeCache()
	producer := &fakeProducer{}
	sugg := suggestion.NewSuggestionService(repos.Relationship)
	return &testEnv{
		invitations: NewInvitationService(repos, cache, producer, sugg),
		groups:      group.NewGroupService(repos, cache, producer, sugg),
		repos:       repos,
		store:       store,
	}
}

// createGroup 建一个群并返回群 ID，owner 为群主
func (e *testEnv) createGroup(t *testing.T, owner, name string, initial ...string) string {
	t.Helper()
	resp, err := e.groups.CreateGroup(owner, &request.CreateGroupRequest{
		Name:             name,
		InitialMemberIds: initial,
	})
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}
	return resp.GroupId
}

// seedExpiredInvitation 预置一条已过期但仍为 PENDING 的邀请
func (e *testEnv) seedExpiredInvitation(t *testing.T, groupId, inviter, invitee string) string {
	t.Helper()
	pending := int8(1)
	inv := &model.GroupInvitation{
		Uuid:        "inv-expired-" + invitee,
		GroupUuid:   groupId,
		InviterUuid: inviter,
		InviteeUuid: invitee,
		Status:      invitation_status_enum.PENDING,
		Pending:     &pending,
		ExpiresAt:   time.Now().Add(-8 * 24 * time.Hour),
	}
	if err := e.repos.Invitation.Create(inv); err != nil {
		t.Fatalf("预置过期邀请失败: %v", err)
	}
	return inv.Uuid
}

func TestInvite_CreatesAndSkips(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "Acme Corp Team", "U5")

	result, err := env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2", "U3", "U2"},
	})
	if err != nil {
		t.Fatalf("批量邀请失败: %v", err)
	}
	if result.CreatedCount != 2 {
		t.Errorf("created = %d, want 2", result.CreatedCount)
	}
	if len(result.Invitations) != 2 {
		t.Errorf("返回邀请数 = %d, want 2", len(result.Invitations))
	}

	// 已有待处理邀请的 U2 和已是成员的 U5 都被静默跳过
	result, err = env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2", "U5", "U4"},
	})
	if err != nil {
		t.Fatalf("批量邀请失败: %v", err)
	}
	if result.CreatedCount != 1 || result.SkippedCount != 2 {
		t.Errorf("created = %d skipped = %d, want 1/2", result.CreatedCount, result.SkippedCount)
	}
}

func TestInvite_Permissions(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "Acme Corp Team", "U2")

	// 普通成员不能发邀请
	_, err := env.invitations.Invite("U2", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U3"},
	})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("普通成员邀请应当返回 Forbidden, got %v", err)
	}

	// 非成员同样被拒绝
	_, err = env.invitations.Invite("U9", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U3"},
	})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("非成员邀请应当返回 Forbidden, got %v", err)
	}

	// 群组不存在
	_, err = env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    "G-none",
		InviteeIds: []string{"U3"},
	})
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Errorf("群组不存在应当返回 NotFound, got %v", err)
	}
}

func TestRespond_Accept(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "Acme Corp Team")

	result, err := env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2"},
	})
	if err != nil {
		t.Fatalf("邀请失败: %v", err)
	}
	invitationId := result.Invitations[0].InvitationId

	resp, err := env.invitations.Respond("U2", invitationId, true)
	if err != nil {
		t.Fatalf("接受邀请失败: %v", err)
	}
	if resp.Invitation.Status != invitation_status_enum.ACCEPTED {
		t.Errorf("邀请状态 = %d, want ACCEPTED", resp.Invitation.Status)
	}
	if resp.Member == nil || resp.Member.Role != role_enum.MEMBER || resp.Member.InvitedBy != "U1" {
		t.Errorf("成员关系 = %+v, 应当为 MEMBER 且 invited_by=U1", resp.Member)
	}
	if resp.Suggestion == nil || resp.Suggestion.CategoryKind != suggestion.KindWork {
		t.Errorf("建议 = %+v, 应当归类为 work", resp.Suggestion)
	}

	groupInfo, _ := env.repos.Group.FindByUuid(groupId)
	if groupInfo.MemberCnt != 2 {
		t.Errorf("member_cnt = %d, want 2", groupInfo.MemberCnt)
	}

	// 第二次响应：状态不变，返回 AlreadyResponded
	_, err = env.invitations.Respond("U2", invitationId, false)
	if errorx.GetCode(err) != errorx.CodeAlreadyResponded {
		t.Errorf("重复响应应当返回 AlreadyResponded, got %v", err)
	}
	inv, _ := env.repos.Invitation.FindByUuid(invitationId)
	if inv.Status != invitation_status_enum.ACCEPTED {
		t.Errorf("重复响应后状态 = %d, 应当保持 ACCEPTED", inv.Status)
	}
	groupInfo, _ = env.repos.Group.FindByUuid(groupId)
	if groupInfo.MemberCnt != 2 {
		t.Errorf("重复响应后 member_cnt = %d, 应当保持 2", groupInfo.MemberCnt)
	}
}

func TestRespond_Decline(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "hiking club")
	result, _ := env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2"},
	})
	invitationId := result.Invitations[0].InvitationId

	resp, err := env.invitations.Respond("U2", invitationId, false)
	if err != nil {
		t.Fatalf("拒绝邀请失败: %v", err)
	}
	if resp.Invitation.Status != invitation_status_enum.DECLINED {
		t.Errorf("邀请状态 = %d, want DECLINED", resp.Invitation.Status)
	}
	if resp.Member != nil {
		t.Error("拒绝邀请不应当产生成员关系")
	}
	groupInfo, _ := env.repos.Group.FindByUuid(groupId)
	if groupInfo.MemberCnt != 1 {
		t.Errorf("member_cnt = %d, 应当保持 1", groupInfo.MemberCnt)
	}
}

func TestRespond_OnlyInvitee(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "hiking club")
	result, _ := env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2"},
	})
	invitationId := result.Invitations[0].InvitationId

	_, err := env.invitations.Respond("U3", invitationId, true)
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("他人响应应当返回 Forbidden, got %v", err)
	}

	_, err = env.invitations.Respond("U2", "inv-none", true)
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Errorf("响应不存在的邀请应当返回 NotFound, got %v", err)
	}
}

func TestRespond_LazyExpiry(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "hiking club")
	invitationId := env.seedExpiredInvitation(t, groupId, "U1", "U2")

	_, err := env.invitations.Respond("U2", invitationId, true)
	if errorx.GetCode(err) != errorx.CodeInviteExpired {
		t.Fatalf("过期邀请响应应当返回 Expired, got %v", err)
	}

	// 邀请被惰性置为 EXPIRED，且没有产生成员关系
	inv, _ := env.repos.Invitation.FindByUuid(invitationId)
	if inv.Status != invitation_status_enum.EXPIRED {
		t.Errorf("状态 = %d, want EXPIRED", inv.Status)
	}
	if _, err := env.repos.GroupMember.FindByGroupAndUser(groupId, "U2"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Error("过期邀请不应当产生成员关系")
	}
	groupInfo, _ := env.repos.Group.FindByUuid(groupId)
	if groupInfo.MemberCnt != 1 {
		t.Errorf("member_cnt = %d, 应当保持 1", groupInfo.MemberCnt)
	}
}

func TestInvite_ReplacesExpiredPending(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "hiking club")
	expiredId := env.seedExpiredInvitation(t, groupId, "U1", "U2")

	// 旧邀请过期后重新邀请：旧行置为 EXPIRED，新行创建
	result, err := env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2"},
	})
	if err != nil {
		t.Fatalf("重新邀请失败: %v", err)
	}
	if result.CreatedCount != 1 {
		t.Errorf("created = %d, want 1", result.CreatedCount)
	}
	old, _ := env.repos.Invitation.FindByUuid(expiredId)
	if old.Status != invitation_status_enum.EXPIRED {
		t.Errorf("旧邀请状态 = %d, want EXPIRED", old.Status)
	}
}

func TestCancel_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "hiking club", "U3")
	result, _ := env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2"},
	})
	invitationId := result.Invitations[0].InvitationId

	// 普通成员不能撤销
	if err := env.invitations.Cancel("U3", invitationId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("普通成员撤销应当返回 Forbidden, got %v", err)
	}

	// 撤销后邀请行消失，成员与计数无任何变化
	if err := env.invitations.Cancel("U1", invitationId); err != nil {
		t.Fatalf("撤销邀请失败: %v", err)
	}
	if _, err := env.repos.Invitation.FindByUuid(invitationId); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Error("撤销后邀请行应当被删除")
	}
	groupInfo, _ := env.repos.Group.FindByUuid(groupId)
	if groupInfo.MemberCnt != 2 {
		t.Errorf("member_cnt = %d, 应当保持 2", groupInfo.MemberCnt)
	}

	// 撤销后可以再次邀请
	result, err := env.invitations.Invite("U1", &request.InviteMembersRequest{
		GroupId:    groupId,
		InviteeIds: []string{"U2"},
	})
	if err != nil || result.CreatedCount != 1 {
		t.Errorf("撤销后重新邀请 created = %d err = %v, want 1/nil", result.CreatedCount, err)
	}
}

func TestListPendingForUser(t *testing.T) {
	env := newTestEnv(t)
	group1 := env.createGroup(t, "U1", "hiking club")
	group2 := env.createGroup(t, "U1", "book club")
	env.invitations.Invite("U1", &request.InviteMembersRequest{GroupId: group1, InviteeIds: []string{"U2"}})
	env.invitations.Invite("U1", &request.InviteMembersRequest{GroupId: group2, InviteeIds: []string{"U2"}})
	group3 := env.createGroup(t, "U1", "old club")
	env.seedExpiredInvitation(t, group3, "U1", "U2")

	list, err := env.invitations.ListPendingForUser("U2")
	if err != nil {
		t.Fatalf("查询待处理邀请失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("待处理邀请数 = %d, want 2（过期的不在列表）", len(list))
	}
	if list[0].GroupName == "" {
		t.Error("列表应当附带群名称")
	}
}

func TestListPendingForGroup(t *testing.T) {
	env := newTestEnv(t)
	groupId := env.createGroup(t, "U1", "hiking club", "U5")
	env.invitations.Invite("U1", &request.InviteMembersRequest{GroupId: groupId, InviteeIds: []string{"U2", "U3"}})
	expiredId := env.seedExpiredInvitation(t, groupId, "U1", "U4")

	// 普通成员无权查看
	if _, err := env.invitations.ListPendingForGroup("U5", groupId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("普通成员查看应当返回 Forbidden, got %v", err)
	}

	list, err := env.invitations.ListPendingForGroup("U1", groupId)
	if err != nil {
		t.Fatalf("查询群待处理邀请失败: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("待处理邀请数 = %d, want 2", len(list))
	}
	// 过期邀请被惰性置为 EXPIRED
	old, _ := env.repos.Invitation.FindByUuid(expiredId)
	if old.Status != invitation_status_enum.EXPIRED {
		t.Errorf("过期邀请状态 = %d, want EXPIRED", old.Status)
	}
}
