package errors

import (
	"errors"
	"fmt"
)

// ErrValidation 参数校验失败（具体字段见 ValidationError）
var ErrValidation = errors.New("参数校验失败")

// ValidationError 携带出错字段的校验错误，errors.Is(err, ErrValidation) 为 true
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation 创建字段校验错误
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
