package middleware

import (
	"AmineForum/internal/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析失败或缺失时按游客处理，user_id 为空串
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxUserID, "")

		if token := bearerToken(c); token != "" {
			if claims, err := security.ValidateToken(token); err == nil {
				inject(c, claims)
			}
		}

		c.Next()
	}
}
