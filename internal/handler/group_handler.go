package handler

import (
	"github.com/gin-gonic/gin"

	"memora_group_server/internal/dto/request"
	"memora_group_server/internal/infrastructure/middleware"
	"memora_group_server/internal/service"
)

// GroupHandler 群组与成员相关接口
type GroupHandler struct {
	svc service.GroupService
}

// NewGroupHandler 创建群组 Handler
func NewGroupHandler(svc service.GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// CreateGroup 创建群组
// POST /group/create
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.CreateGroup(c.GetString(middleware.CtxUserID), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// GetGroup 获取群组详情
// GET /group/info?group_id=
func (h *GroupHandler) GetGroup(c *gin.Context) {
	var req request.GetGroupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.GetGroup(c.GetString(middleware.CtxUserID), req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// UpdateGroup 更新群组资料
// POST /group/update
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var req request.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.UpdateGroup(c.GetString(middleware.CtxUserID), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// DeleteGroup 解散群组
// POST /group/delete
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	var req request.DeleteGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.DeleteGroup(c.GetString(middleware.CtxUserID), req.GroupId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AddMember 添加群成员
// POST /group/member/add
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req request.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.AddMember(c.GetString(middleware.CtxUserID), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// RemoveMember 移除群成员或自行退群
// POST /group/member/remove
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	var req request.RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.RemoveMember(c.GetString(middleware.CtxUserID), &req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ChangeRole 变更成员角色
// POST /group/member/role
func (h *GroupHandler) ChangeRole(c *gin.Context) {
	var req request.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.ChangeRole(c.GetString(middleware.CtxUserID), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// JoinGroup 加入公开群
// POST /group/join
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	var req request.JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.JoinPublicGroup(c.GetString(middleware.CtxUserID), req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// ListMembers 获取群成员列表
// GET /group/member/list?group_id=
func (h *GroupHandler) ListMembers(c *gin.Context) {
	var req request.GetMemberListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.ListMembers(c.GetString(middleware.CtxUserID), req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}
