package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/henrytires/backend/internal/domain/inventory"
)

// SetupValidator configures gin's validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// tirecondition validates a tire condition value, case-insensitively
	_ = v.RegisterValidation("tirecondition", func(fl validator.FieldLevel) bool {
		_, err := inventory.ParseCondition(fl.Field().String())
		return err == nil
	})
}
