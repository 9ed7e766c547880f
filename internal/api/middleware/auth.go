package middleware

import (
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/pkg/security"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID  = "user_id"
	CtxLoginID = "login_id"
	CtxRoles   = "roles"
)

// bearerToken 浏览器 websocket 无法设置 Header，允许从 query 携带
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

func inject(c *gin.Context, claims *security.UserClaims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxLoginID, claims.LoginID)
	c.Set(CtxRoles, claims.Roles)
}

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil || claims.UserID == "" {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		inject(c, claims)
		c.Next()
	}
}
