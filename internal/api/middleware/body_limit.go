package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stride/backend/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes 来自 server.max_body_bytes，ICS 文件上传同样受此约束；<= 0 表示不限制
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		// Content-Length 已声明超限时无需读取请求体
		if c.Request.ContentLength > maxBytes {
			response.PayloadTooLarge(c)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		// 处理器已自行响应时不再覆盖
		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, ge := range c.Errors {
			if IsBodyTooLarge(ge.Err) {
				response.PayloadTooLarge(c)
				return
			}
		}
	}
}

// IsBodyTooLarge 判断错误是否由请求体超限引起
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
