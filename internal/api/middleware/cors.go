package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
// allow_origins 中的 "*" 放行任意来源，但不携带凭证
func CORS(allowOrigins []string) gin.HandlerFunc {
	originsMap := make(map[string]bool, len(allowOrigins))
	wildcard := false
	for _, o := range allowOrigins {
		o = strings.TrimRight(o, "/")
		if o == "*" {
			wildcard = true
			continue
		}
		originsMap[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Writer.Header().Add("Vary", "Origin")

		switch {
		case origin == "":
		case originsMap[origin]:
			setCORSHeaders(c, origin, true)
		case wildcard:
			setCORSHeaders(c, "*", false)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, allowOrigin string, credentials bool) {
	c.Header("Access-Control-Allow-Origin", allowOrigin)
	if credentials {
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	c.Header("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
	c.Header("Access-Control-Max-Age", "86400")
}
