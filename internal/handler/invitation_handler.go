package handler

import (
	"github.com/gin-gonic/gin"

	"memora_group_server/internal/dto/request"
	"memora_group_server/internal/infrastructure/middleware"
	"memora_group_server/internal/service"
)

// InvitationHandler 群邀请相关接口
type InvitationHandler struct {
	svc service.InvitationService
}

// NewInvitationHandler 创建邀请 Handler
func NewInvitationHandler(svc service.InvitationService) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

// Invite 批量发出邀请
// POST /invitation/invite
func (h *InvitationHandler) Invite(c *gin.Context) {
	var req request.InviteMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.Invite(c.GetString(middleware.CtxUserID), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// Respond 接受或拒绝邀请
// POST /invitation/respond
func (h *InvitationHandler) Respond(c *gin.Context) {
	var req request.RespondInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.Respond(c.GetString(middleware.CtxUserID), req.InvitationId, *req.Accept)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// Cancel 撤销待处理邀请
// POST /invitation/cancel
func (h *InvitationHandler) Cancel(c *gin.Context) {
	var req request.CancelInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.svc.Cancel(c.GetString(middleware.CtxUserID), req.InvitationId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListPendingForUser 当前用户的待处理邀请
// GET /invitation/my
func (h *InvitationHandler) ListPendingForUser(c *gin.Context) {
	resp, err := h.svc.ListPendingForUser(c.GetString(middleware.CtxUserID))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}

// ListPendingForGroup 群组的待处理邀请
// GET /invitation/group?group_id=
func (h *InvitationHandler) ListPendingForGroup(c *gin.Context) {
	var req request.GetGroupInvitationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	resp, err := h.svc.ListPendingForGroup(c.GetString(middleware.CtxUserID), req.GroupId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, resp)
}
