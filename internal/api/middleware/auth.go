package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"stride/backend/pkg/jwt"
	"stride/backend/pkg/response"
)

// ContextKeyOwnerID 注入 owner_id 的上下文键
const ContextKeyOwnerID = "owner_id"

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 校验通过后将 owner_id 注入上下文；Token 中没有 owner_id 一律拒绝
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrOwnerMissing) {
				response.Unauthorized(c, 10002, "Token 缺少用户身份")
			} else {
				response.Unauthorized(c, 10002, "Token 无效或已过期")
			}
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		c.Set(ContextKeyOwnerID, claims.OwnerID)
		c.Set("token_jti", claims.ID)

		c.Next()
	}
}
