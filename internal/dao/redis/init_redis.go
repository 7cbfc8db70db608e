// Package redis 提供 Redis 缓存操作的封装
// 本文件仅包含 Redis 连接初始化逻辑
// 使用 github.com/redis/go-redis/v9 作为底层客户端
package redis

import (
	"strconv"

	"memora_group_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 初始化 Redis 连接并返回异步缓存服务实例
// 从配置文件读取连接参数并创建客户端实例
func Init() AsyncCacheService {
	conf := config.GetConfig()
	host := conf.RedisConfig.Host
	port := conf.RedisConfig.Port
	password := conf.RedisConfig.Password
	db := conf.RedisConfig.Db

	// 拼接地址：host:port
	addr := host + ":" + strconv.Itoa(port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// 连接池配置
		PoolSize:     50, // 最大连接数
		MinIdleConns: 15, // 最小空闲连接，与 Worker 数量匹配
	})

	// 15 个 Worker，缓冲区 3000，多个 Service 共享
	return NewRedisCache(client, 15, 3000)
}
