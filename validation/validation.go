package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/datakit-go/datakit/errors"
)

// FieldError describes one violated constraint on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	once    sync.Once
	checker *validator.Validate
)

// structChecker returns the shared validator, configured to report
// fields by their json tag names.
func structChecker() *validator.Validate {
	once.Do(func() {
		checker = validator.New(validator.WithRequiredStructEnabled())
		checker.RegisterTagNameFunc(func(field reflect.StructField) string {
			tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if tag != "" && tag != "-" {
				return tag
			}
			return snakeCase(field.Name)
		})
	})
	return checker
}

// Validate checks the validate tags on s and reports every violated
// constraint in one structured error with an INVALID_CONFIG code. The
// per-field breakdown is carried under the "fields" detail key.
func Validate(s any) error {
	err := structChecker().Struct(s)
	if err == nil {
		return nil
	}
	viols, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation(err.Error())
	}

	fields := make([]FieldError, 0, len(viols))
	parts := make([]string, 0, len(viols))
	for _, viol := range viols {
		fe := FieldError{Field: viol.Field(), Message: describe(viol)}
		fields = append(fields, fe)
		parts = append(parts, fe.Field+" "+fe.Message)
	}

	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}

// describe renders one violation as a short message.
func describe(viol validator.FieldError) string {
	switch viol.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + viol.Param()
	case "gte", "min":
		return "must be at least " + viol.Param()
	case "lt":
		return "must be less than " + viol.Param()
	case "lte", "max":
		return "must be at most " + viol.Param()
	case "oneof":
		return "must be one of " + viol.Param()
	default:
		if viol.Param() != "" {
			return "must satisfy " + viol.Tag() + "=" + viol.Param()
		}
		return "must satisfy " + viol.Tag()
	}
}

// snakeCase converts a Go field name to its snake_case form.
func snakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
