package group

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
	"memora_group_server/internal/service/suggestion"
	"memora_group_server/pkg/enum/group_info/privacy_enum"
	"memora_group_server/pkg/enum/group_member/role_enum"
	"memora_group_server/pkg/errorx"
)

// fakeCache 内存缓存，SubmitTask 同步执行便于断言
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

// fakeProducer 记录投递的事件
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

func newTestService(t *testing.T) (service.GroupService, *repository.Repositories, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	svc := NewGroupService(repos, newFakeCache(), &fakeProducer{},
		suggestion.NewSuggestionService(repos.Relationship))
	return svc, repos, store
}

// assertCountConsistent 校验冗余计数与成员行数一致
func assertCountConsistent(t *testing.T, repos *repository.Repositories, groupId string) {
	t.Helper()
	group, err := repos.Group.FindByUuid(groupId)
	if err != nil {
		t.Fatalf("查询群组失败: %v", err)
	}
	cnt, err := repos.GroupMember.CountByGroupUuid(groupId)
	if err != nil {
		t.Fatalf("统计成员失败: %v", err)
	}
	if int64(group.MemberCnt) != cnt {
		t.Errorf("member_cnt = %d, 实际成员行数 = %d", group.MemberCnt, cnt)
	}
}

func TestCreateGroup_EmptyNameRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateGroup("U1", &request.CreateGroupRequest{Name: "   "})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("空群名应当返回参数错误, got %v", err)
	}
}

func TestCreateGroup_CreatorBecomesOwner(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, err := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "Acme Corp Team",
		InitialMemberIds: []string{"U2", "U3", "U2", "U1"},
	})
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}
	// 初始成员去重且不重复计入创建者
	if resp.MemberCnt != 3 {
		t.Errorf("member_cnt = %d, want 3", resp.MemberCnt)
	}
	owner, err := repos.GroupMember.FindByGroupAndUser(resp.GroupId, "U1")
	if err != nil || owner.Role != role_enum.OWNER {
		t.Errorf("创建者应当是群主, member=%+v err=%v", owner, err)
	}
	member, err := repos.GroupMember.FindByGroupAndUser(resp.GroupId, "U2")
	if err != nil || member.Role != role_enum.MEMBER {
		t.Errorf("初始成员应当是普通成员, member=%+v err=%v", member, err)
	}
	assertCountConsistent(t, repos, resp.GroupId)
}

func TestJoinPublicGroup(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, err := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:    "Acme Corp Team",
		Privacy: privacy_enum.PUBLIC,
	})
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}

	joined, err := svc.JoinPublicGroup("U2", resp.GroupId)
	if err != nil {
		t.Fatalf("加入公开群失败: %v", err)
	}
	if joined.Member.Role != role_enum.MEMBER {
		t.Errorf("加入者角色 = %d, want MEMBER", joined.Member.Role)
	}
	if joined.Suggestion == nil {
		t.Fatal("加入后应当返回关系归档建议")
	}
	if joined.Suggestion.CategoryKind != suggestion.KindWork {
		t.Errorf("建议分类 = %q, want work", joined.Suggestion.CategoryKind)
	}
	assertCountConsistent(t, repos, resp.GroupId)

	// 重复加入返回 AlreadyMember
	_, err = svc.JoinPublicGroup("U2", resp.GroupId)
	if errorx.GetCode(err) != errorx.CodeAlreadyMember {
		t.Errorf("重复加入应当返回 AlreadyMember, got %v", err)
	}
	assertCountConsistent(t, repos, resp.GroupId)
}

func TestJoinPublicGroup_ConcurrentSameUser(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, err := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:    "city walks",
		Privacy: privacy_enum.PUBLIC,
	})
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}

	// 同一用户并发加入，唯一键保证只有一个成功
	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.JoinPublicGroup("U2", resp.GroupId)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success, already := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			success++
		case errorx.GetCode(err) == errorx.CodeAlreadyMember:
			already++
		default:
			t.Errorf("并发加入出现意外错误: %v", err)
		}
	}
	if success != 1 {
		t.Errorf("成功次数 = %d, want 1", success)
	}
	if already != workers-1 {
		t.Errorf("AlreadyMember 次数 = %d, want %d", already, workers-1)
	}
	assertCountConsistent(t, repos, resp.GroupId)
	group, _ := repos.Group.FindByUuid(resp.GroupId)
	if group.MemberCnt != 2 {
		t.Errorf("member_cnt = %d, want 2", group.MemberCnt)
	}
}

func TestAddMember_ConcurrentSameUser(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, err := svc.CreateGroup("U1", &request.CreateGroupRequest{Name: "hiking club"})
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddMember("U1", &request.AddMemberRequest{GroupId: resp.GroupId, UserId: "U2"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success, already := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			success++
		case errorx.GetCode(err) == errorx.CodeAlreadyMember:
			already++
		default:
			t.Errorf("并发添加出现意外错误: %v", err)
		}
	}
	if success != 1 {
		t.Errorf("成功次数 = %d, want 1", success)
	}
	if already != workers-1 {
		t.Errorf("AlreadyMember 次数 = %d, want %d", already, workers-1)
	}
	assertCountConsistent(t, repos, resp.GroupId)
}

func TestJoinPublicGroup_PrivateRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp, err := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:    "Acme Corp Team",
		Privacy: privacy_enum.PRIVATE,
	})
	if err != nil {
		t.Fatalf("创建群组失败: %v", err)
	}
	_, err = svc.JoinPublicGroup("U2", resp.GroupId)
	if errorx.GetCode(err) != errorx.CodeNotPublic {
		t.Errorf("加入私密群应当返回 NotPublic, got %v", err)
	}
}

func TestAddMember(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{Name: "hiking club"})

	// 群主添加成员
	member, err := svc.AddMember("U1", &request.AddMemberRequest{GroupId: resp.GroupId, UserId: "U2"})
	if err != nil {
		t.Fatalf("添加成员失败: %v", err)
	}
	if member.Role != role_enum.MEMBER {
		t.Errorf("默认角色 = %d, want MEMBER", member.Role)
	}
	assertCountConsistent(t, repos, resp.GroupId)

	// 普通成员无权添加
	_, err = svc.AddMember("U2", &request.AddMemberRequest{GroupId: resp.GroupId, UserId: "U3"})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("普通成员添加应当返回 Forbidden, got %v", err)
	}

	// 重复添加
	_, err = svc.AddMember("U1", &request.AddMemberRequest{GroupId: resp.GroupId, UserId: "U2"})
	if errorx.GetCode(err) != errorx.CodeAlreadyMember {
		t.Errorf("重复添加应当返回 AlreadyMember, got %v", err)
	}
	assertCountConsistent(t, repos, resp.GroupId)
}

func TestRemoveMember_OwnerMustTransferFirst(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{Name: "hiking club"})

	// 群主是唯一成员时可以退群
	if err := svc.RemoveMember("U1", &request.RemoveMemberRequest{GroupId: resp.GroupId, UserId: "U1"}); err != nil {
		t.Fatalf("唯一成员退群失败: %v", err)
	}
	group, _ := repos.Group.FindByUuid(resp.GroupId)
	if group.MemberCnt != 0 {
		t.Errorf("member_cnt = %d, want 0", group.MemberCnt)
	}

	// 重新加入并带上其他成员后，群主必须先转让
	resp2, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "hiking club 2",
		InitialMemberIds: []string{"U2"},
	})
	err := svc.RemoveMember("U1", &request.RemoveMemberRequest{GroupId: resp2.GroupId, UserId: "U1"})
	if errorx.GetCode(err) != errorx.CodeOwnerMustTransfer {
		t.Errorf("仍有成员时群主退群应当返回 OwnerMustTransfer, got %v", err)
	}
	assertCountConsistent(t, repos, resp2.GroupId)
}

func TestRemoveMember_Permissions(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "hiking club",
		InitialMemberIds: []string{"U2", "U3"},
	})

	// 普通成员不能移除他人
	err := svc.RemoveMember("U2", &request.RemoveMemberRequest{GroupId: resp.GroupId, UserId: "U3"})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("普通成员移除他人应当返回 Forbidden, got %v", err)
	}

	// 自行退群无需权限
	if err := svc.RemoveMember("U2", &request.RemoveMemberRequest{GroupId: resp.GroupId, UserId: "U2"}); err != nil {
		t.Fatalf("自行退群失败: %v", err)
	}
	assertCountConsistent(t, repos, resp.GroupId)

	// 群主移除成员
	if err := svc.RemoveMember("U1", &request.RemoveMemberRequest{GroupId: resp.GroupId, UserId: "U3"}); err != nil {
		t.Fatalf("群主移除成员失败: %v", err)
	}
	assertCountConsistent(t, repos, resp.GroupId)

	// 移除不存在的成员
	err = svc.RemoveMember("U1", &request.RemoveMemberRequest{GroupId: resp.GroupId, UserId: "U9"})
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Errorf("移除非成员应当返回 NotFound, got %v", err)
	}
}

func TestChangeRole_OwnerTransfer(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "hiking club",
		InitialMemberIds: []string{"U2"},
	})

	member, err := svc.ChangeRole("U1", &request.ChangeRoleRequest{
		GroupId: resp.GroupId, UserId: "U2", Role: role_enum.OWNER,
	})
	if err != nil {
		t.Fatalf("转让群主失败: %v", err)
	}
	if member.Role != role_enum.OWNER {
		t.Errorf("新群主角色 = %d, want OWNER", member.Role)
	}
	// 原群主降为管理员，且全群只有一个群主
	old, _ := repos.GroupMember.FindByGroupAndUser(resp.GroupId, "U1")
	if old.Role != role_enum.ADMIN {
		t.Errorf("原群主角色 = %d, want ADMIN", old.Role)
	}
	members, _ := repos.GroupMember.FindByGroupUuid(resp.GroupId)
	owners := 0
	for _, m := range members {
		if m.Role == role_enum.OWNER {
			owners++
		}
	}
	if owners != 1 {
		t.Errorf("群主数量 = %d, want 1", owners)
	}
}

func TestChangeRole_Permissions(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "hiking club",
		InitialMemberIds: []string{"U2", "U3"},
	})
	// 提升 U2 为管理员
	if _, err := svc.ChangeRole("U1", &request.ChangeRoleRequest{
		GroupId: resp.GroupId, UserId: "U2", Role: role_enum.ADMIN,
	}); err != nil {
		t.Fatalf("提升管理员失败: %v", err)
	}

	// 管理员不能变更角色
	_, err := svc.ChangeRole("U2", &request.ChangeRoleRequest{
		GroupId: resp.GroupId, UserId: "U3", Role: role_enum.ADMIN,
	})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("管理员变更角色应当返回 Forbidden, got %v", err)
	}

	// 不能变更自己的角色
	_, err = svc.ChangeRole("U1", &request.ChangeRoleRequest{
		GroupId: resp.GroupId, UserId: "U1", Role: role_enum.ADMIN,
	})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Errorf("变更自己角色应当返回参数错误, got %v", err)
	}
}

func TestGetGroup_Visibility(t *testing.T) {
	svc, _, store := newTestService(t)
	store.AddUser(model.UserInfo{Uuid: "U1", Nickname: "张三"})

	private, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:    "family album",
		Privacy: privacy_enum.PRIVATE,
	})
	public, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:    "city walks",
		Privacy: privacy_enum.PUBLIC,
	})

	// 非成员查看私密群：信息隐藏，表现为不存在
	_, err := svc.GetGroup("U2", private.GroupId)
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Errorf("非成员查看私密群应当返回 NotFound, got %v", err)
	}

	// 非成员查看公开群：可见但角色为空、成员列表为空
	detail, err := svc.GetGroup("U2", public.GroupId)
	if err != nil {
		t.Fatalf("非成员查看公开群失败: %v", err)
	}
	if detail.MyRole != nil {
		t.Error("非成员 MyRole 应当为 nil")
	}
	if len(detail.Members) != 0 {
		t.Errorf("非成员可见成员数 = %d, want 0", len(detail.Members))
	}

	// 群主查看私密群：角色与成员列表齐全
	detail, err = svc.GetGroup("U1", private.GroupId)
	if err != nil {
		t.Fatalf("群主查看群组失败: %v", err)
	}
	if detail.MyRole == nil || *detail.MyRole != role_enum.OWNER {
		t.Errorf("MyRole = %v, want OWNER", detail.MyRole)
	}
	if len(detail.Members) != 1 || detail.Members[0].Nickname != "张三" {
		t.Errorf("成员列表 = %+v, 应当含群主资料", detail.Members)
	}

	// 群组不存在
	_, err = svc.GetGroup("U1", "G-none")
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Errorf("查看不存在的群应当返回 NotFound, got %v", err)
	}
}

func TestListMembers_PolicyEmptyList(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "city walks",
		Privacy:          privacy_enum.PUBLIC,
		InitialMemberIds: []string{"U2"},
	})

	// 公开群的普通成员拿到空列表而不是错误
	list, err := svc.ListMembers("U2", resp.GroupId)
	if err != nil {
		t.Fatalf("成员列表查询失败: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("公开群普通成员可见成员数 = %d, want 0", len(list))
	}

	// 群主可见全部
	list, err = svc.ListMembers("U1", resp.GroupId)
	if err != nil {
		t.Fatalf("成员列表查询失败: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("群主可见成员数 = %d, want 2", len(list))
	}

	// 非成员同样拿到空列表
	list, err = svc.ListMembers("U9", resp.GroupId)
	if err != nil {
		t.Fatalf("成员列表查询失败: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("非成员可见成员数 = %d, want 0", len(list))
	}
}

func TestUpdateGroup(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "city walks",
		InitialMemberIds: []string{"U2"},
	})

	newName := "city walks 2024"
	updated, err := svc.UpdateGroup("U1", &request.UpdateGroupRequest{
		GroupId: resp.GroupId,
		Name:    &newName,
	})
	if err != nil {
		t.Fatalf("更新群组失败: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("群名 = %q, want %q", updated.Name, newName)
	}

	// 普通成员无权更新
	_, err = svc.UpdateGroup("U2", &request.UpdateGroupRequest{GroupId: resp.GroupId, Name: &newName})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("普通成员更新应当返回 Forbidden, got %v", err)
	}

	// 更新为空名被拒绝
	empty := "  "
	_, err = svc.UpdateGroup("U1", &request.UpdateGroupRequest{GroupId: resp.GroupId, Name: &empty})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Errorf("空群名应当返回参数错误, got %v", err)
	}
}

func TestDeleteGroup_Cascade(t *testing.T) {
	svc, repos, _ := newTestService(t)
	resp, _ := svc.CreateGroup("U1", &request.CreateGroupRequest{
		Name:             "city walks",
		InitialMemberIds: []string{"U2"},
	})

	// 普通成员无权解散
	if err := svc.DeleteGroup("U2", resp.GroupId); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Errorf("普通成员解散应当返回 Forbidden, got %v", err)
	}

	if err := svc.DeleteGroup("U1", resp.GroupId); err != nil {
		t.Fatalf("解散群组失败: %v", err)
	}
	if _, err := repos.Group.FindByUuid(resp.GroupId); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Error("解散后群组应当不存在")
	}
	cnt, _ := repos.GroupMember.CountByGroupUuid(resp.GroupId)
	if cnt != 0 {
		t.Errorf("解散后成员行数 = %d, want 0", cnt)
	}
}
