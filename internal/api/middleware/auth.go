package middleware

import (
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/redis"
	"Applyhub/internal/pkg/response"
	"Applyhub/internal/pkg/security"
	"errors"
	log "log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		signature, err := security.ExtractSignature(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			return
		}

		// 未配置 Redis 时跳过黑名单检查
		value, err := redis.GetValue(c.Request.Context(), consts.TokenBlacklistKey+signature)
		if err != nil && !errors.Is(err, redis.ErrNotInitialized) {
			log.ErrorContext(c.Request.Context(), "check token blacklist failed", "err", err)
			response.Fail(c, response.InternalServerError, "未知错误")
			return
		}
		if value != "" {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("roles", claims.Roles)
		c.Set(actorKey, security.Actor{UserID: claims.UserID, Roles: claims.Roles})

		c.Next()
	}
}

// GetActor 取出 AuthMiddleware 注入的当前用户
func GetActor(c *gin.Context) security.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(security.Actor); ok {
			return actor
		}
	}
	return security.Actor{}
}
