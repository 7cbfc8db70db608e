// Package privacy_enum 群组隐私模式枚举
package privacy_enum

const (
	PUBLIC       int8 = iota // 公开，可被发现并直接加入
	FRIENDS_ONLY             // 仅好友可见
	PRIVATE                  // 私密，仅限邀请加入，不可被发现
)
