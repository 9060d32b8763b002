package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"go-lead-crm/internal/service"
)

// phoneRegexp 宽松的国际电话格式
var phoneRegexp = regexp.MustCompile(`^[\+]?[(]?[0-9]{1,4}[)]?[-\s\.]?[(]?[0-9]{1,4}[)]?[-\s\.]?[0-9]{1,9}$`)

// RegisterValidators 挂到 gin 的 binding 校验器上：
// 字段名走 json tag，补一条 phone 规则。路由装配时调用一次。
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegexp.MatchString(fl.Field().String())
	})
}

// bindJSON 绑定失败时转成逐字段的校验错误
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return service.Validation(fieldErrors(verrs))
		}
		return service.BadRequest("Invalid request body")
	}
	return nil
}

func fieldErrors(verrs validator.ValidationErrors) []service.FieldError {
	out := make([]service.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, service.FieldError{
			Path:    fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "phone":
		return "Invalid phone number format"
	case "min":
		if fe.Field() == "name" {
			return "Name must be at least 2 characters"
		}
	case "max":
		switch fe.Field() {
		case "name":
			return "Name must not exceed 100 characters"
		case "notes":
			return "Notes must not exceed 500 characters"
		}
	case "oneof":
		switch fe.Field() {
		case "source":
			return "Source must be 'website', 'referral', or 'cold'"
		case "status":
			return "Status must be 'new', 'contacted', 'qualified', 'won', 'lost'"
		}
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
