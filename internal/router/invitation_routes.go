package router

import (
	"github.com/gin-gonic/gin"

	"memora_group_server/internal/infrastructure/middleware"
)

// registerInvitationRoutes 群邀请路由
func (r *Router) registerInvitationRoutes(api *gin.RouterGroup) {
	h := r.handlers.Invitation

	invitation := api.Group("/invitation")
	{
		invitation.GET("/my", h.ListPendingForUser)
		invitation.GET("/group", h.ListPendingForGroup)
	}

	invitationWrite := api.Group("/invitation")
	invitationWrite.Use(middleware.RequireFullMode())
	{
		invitationWrite.POST("/invite", h.Invite)
		invitationWrite.POST("/respond", h.Respond)
		invitationWrite.POST("/cancel", h.Cancel)
	}
}
