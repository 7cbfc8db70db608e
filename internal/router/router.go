// Package router 路由注册
// 所有接口都要求认证，变更接口额外要求会话具备写能力
package router

import (
	"github.com/gin-gonic/gin"

	"memora_group_server/internal/handler"
	"memora_group_server/internal/infrastructure/middleware"
)

// Router 路由注册器
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由注册器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// Register 注册全部路由
func (r *Router) Register(engine *gin.Engine) {
	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth())

	r.registerGroupRoutes(api)
	r.registerInvitationRoutes(api)
}
