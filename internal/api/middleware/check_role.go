package middleware

import (
	"Applyhub/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckRoles 检查当前用户是否拥有至少一个指定的角色
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetActor(c).HasRole(requiredRoles...) {
			response.Fail(c, response.Forbidden, "权限不足：无权访问该资源")
			return
		}
		c.Next()
	}
}
