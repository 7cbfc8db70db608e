package middleware

import (
	"net/http"
	"strings"

	"memora_group_server/pkg/errorx"
	"memora_group_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// 上下文键，JWTAuth 写入，Handler 读取
const (
	CtxUserID   = "user_id"
	CtxFullMode = "full_mode"
)

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将操作者信息存入上下文
// Token 由外部身份服务签发，claims 携带用户 id 和写能力标记
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "请先登录",
			})
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "Token 格式错误，请使用 Bearer Token",
			})
			return
		}

		// 3. 验证 Token
		claims, err := jwt.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "Token 已过期或无效，请重新登录",
			})
			return
		}

		// 4. 验证是否为 Access Token
		if claims.Subject != "access_token" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "请使用 Access Token 访问此接口",
			})
			return
		}

		// 5. 将操作者信息存入上下文，供后续 Handler 使用
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxFullMode, claims.FullMode)
		c.Next()
	}
}

// RequireFullMode 写能力校验中间件
// 只读会话（full_mode=false）调用任何变更接口一律拒绝
// 必须挂在 JWTAuth 之后
func RequireFullMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxFullMode) {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{
				"code": errorx.CodeForbidden,
				"msg":  "当前会话为只读模式，无法执行变更操作",
			})
			return
		}
		c.Next()
	}
}
