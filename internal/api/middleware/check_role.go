package middleware

import (
	"AmineForum/internal/pkg/response"
	"AmineForum/internal/pkg/util"

	"github.com/gin-gonic/gin"
)

// RoleResolver 按当前状态判断角色，Token 签发后被撤销的管理员也能及时失效
type RoleResolver func(c *gin.Context, userID, role string) bool

// CheckRoles 检查当前用户是否拥有至少一个指定的角色；resolver 非空时以其结果为准
func CheckRoles(resolver RoleResolver, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := c.GetStringSlice(CtxRoles)
		userID := c.GetString(CtxUserID)

		hasPermission := false
		for _, required := range requiredRoles {
			if resolver != nil {
				hasPermission = resolver(c, userID, required)
			} else {
				hasPermission = util.Contains(roles, required)
			}
			if hasPermission {
				break
			}
		}

		if !hasPermission {
			response.Fail(c, response.Forbidden, "权限不足：无权访问该资源")
			c.Abort()
			return
		}

		c.Next()
	}
}
