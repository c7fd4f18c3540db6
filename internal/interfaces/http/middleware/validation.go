package middleware

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator registers the custom tags on gin's validator and reports
// fields by their json (or form) name.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return RegisterValidations(v)
}

// RegisterValidations adds tenant_schema, member_status, sex and period tags to v
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	tags := map[string]validator.Func{
		"tenant_schema": func(fl validator.FieldLevel) bool {
			_, err := tenant.Parse(fl.Field().String())
			return err == nil
		},
		"member_status": func(fl validator.FieldLevel) bool {
			_, err := membership.ParseMemberStatus(fl.Field().String())
			return err == nil
		},
		"sex": func(fl validator.FieldLevel) bool {
			_, err := membership.ParseSex(fl.Field().String())
			return err == nil
		},
		"period": func(fl validator.FieldLevel) bool {
			_, err := time.Parse(membership.PeriodLayout, fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// ValidationMessage describes the first failed field of a binding error, or
// returns "" when err is not a validation error
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	return fieldMessage(verrs[0])
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return field + " must be at least " + e.Param() + " characters"
		}
		return field + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return field + " must be at most " + e.Param() + " characters"
		}
		return field + " must be at most " + e.Param()
	case "gt":
		return field + " must be greater than " + e.Param()
	case "gte":
		return field + " must be greater than or equal to " + e.Param()
	case "datetime":
		return "Invalid " + field + " value"
	case "tenant_schema":
		return "Invalid tenant identifier"
	case "member_status":
		return "Invalid status value"
	case "sex":
		return "Invalid sex value"
	case "period":
		return "Invalid period value"
	default:
		return "Invalid " + field + " value"
	}
}
