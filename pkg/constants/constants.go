package constants

import "time"

const (
	CHANNEL_SIZE               = 100                // 事件通道大小
	INVITATION_EXPIRY          = 7 * 24 * time.Hour // 邀请有效期，默认 7 天
	GROUP_CACHE_EXPIRY         = 24 * time.Hour     // 群组信息缓存有效期
	MEMBER_CACHE_EXPIRY        = 30 * time.Minute   // 群成员列表缓存有效期
	REFRESH_TOKEN_EXPIRY_HOURS = 168                // Refresh Token 有效期（小时），168小时 = 7天
)
