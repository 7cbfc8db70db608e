package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memora_group_server/internal/config"
	"memora_group_server/internal/dao/mysql"
	"memora_group_server/internal/dao/redis"
	"memora_group_server/internal/handler"
	"memora_group_server/internal/http_server"
	"memora_group_server/internal/infrastructure/logger"
	"memora_group_server/internal/infrastructure/mq"
	"memora_group_server/internal/service"
	"memora_group_server/internal/service/group"
	"memora_group_server/internal/service/invitation"
	"memora_group_server/internal/service/suggestion"
	"memora_group_server/pkg/util/jwt"
)

func main() {
	conf := config.GetConfig()

	mode := gin.ReleaseMode
	if conf.LogConfig.Level == "debug" {
		mode = gin.DebugMode
	}
	if err := logger.Init(&conf.LogConfig, mode); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zap.L().Sync() }()

	if err := handler.InitTranslator("zh"); err != nil {
		zap.L().Fatal("初始化校验翻译器失败", zap.Error(err))
	}

	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)

	// 存储与外部依赖，生命周期由进程入口持有并注入
	repos := mysql.Init()
	cache := redis.Init()
	producer := mq.Init(&conf.KafkaConfig)
	defer producer.Close()

	sugg := suggestion.NewSuggestionService(repos.Relationship)
	services := &service.Services{
		Group:      group.NewGroupService(repos, cache, producer, sugg),
		Invitation: invitation.NewInvitationService(repos, cache, producer, sugg),
	}

	engine := http_server.NewEngine(handler.NewHandlers(services), mode)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr), zap.String("app", conf.MainConfig.AppName))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号，优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("收到退出信号，开始关停")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("服务关停异常", zap.Error(err))
	}
	zap.L().Info("服务已退出")
}
