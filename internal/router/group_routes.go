package router

import (
	"github.com/gin-gonic/gin"

	"memora_group_server/internal/infrastructure/middleware"
)

// registerGroupRoutes 群组与成员路由
// 读接口仅需认证，写接口要求 full_mode 会话
func (r *Router) registerGroupRoutes(api *gin.RouterGroup) {
	h := r.handlers.Group

	group := api.Group("/group")
	{
		group.GET("/info", h.GetGroup)
		group.GET("/member/list", h.ListMembers)
	}

	groupWrite := api.Group("/group")
	groupWrite.Use(middleware.RequireFullMode())
	{
		groupWrite.POST("/create", h.CreateGroup)
		groupWrite.POST("/update", h.UpdateGroup)
		groupWrite.POST("/delete", h.DeleteGroup)
		groupWrite.POST("/join", h.JoinGroup)
		groupWrite.POST("/member/add", h.AddMember)
		groupWrite.POST("/member/remove", h.RemoveMember)
		groupWrite.POST("/member/role", h.ChangeRole)
	}
}
