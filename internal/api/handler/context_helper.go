package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"stride/backend/internal/api/middleware"
	apperrors "stride/backend/pkg/errors"
	"stride/backend/pkg/response"
)

// ContextKeyOwnerID JWT 中间件注入 owner_id 的上下文键
const ContextKeyOwnerID = middleware.ContextKeyOwnerID

// MustGetOwnerID 从 Gin 上下文中安全提取 owner_id。
// 如果 JWT 中间件未正确注入 owner_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOwnerID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyOwnerID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// bindFailed 把 gin 绑定错误转换为带字段明细的 400 响应
func bindFailed(c *gin.Context, err error) {
	response.ValidationFailed(c, bindErrorDetails(err))
}

func bindErrorDetails(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if fe.Param() != "" {
				parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			} else {
				parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
			}
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}

// validationDetails 提取服务层 ValidationError 的字段信息
func validationDetails(err error) string {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
