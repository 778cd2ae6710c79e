package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"stride/backend/pkg/caldate"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验引擎注册自定义规则：
//   - caldate: 字符串必须是 YYYY-MM-DD 日历日
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("caldate", validateCalDate)
	})
}

func validateCalDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len(caldate.Layout) {
		return false
	}
	_, err := caldate.Parse(s)
	return err == nil
}
