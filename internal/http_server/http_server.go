// Package http_server 组装 HTTP 服务
package http_server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"memora_group_server/internal/config"
	"memora_group_server/internal/handler"
	"memora_group_server/internal/infrastructure/logger"
	"memora_group_server/internal/infrastructure/middleware"
	"memora_group_server/internal/router"
)

// NewEngine 组装 gin 引擎：日志、恢复、跨域中间件加全部业务路由
func NewEngine(handlers *handler.Handlers, mode string) *gin.Engine {
	gin.SetMode(mode)
	engine := gin.New()
	engine.Use(logger.GinLogger(), logger.GinRecovery(true))
	if conf := config.GetConfig(); conf.MainConfig.TlsEnabled {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.NewRouter(handlers).Register(engine)
	return engine
}
