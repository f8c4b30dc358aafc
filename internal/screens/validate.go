package screens

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"assetdesk/pkg/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// structRules returns a record validator driven by the record's struct tags.
// The first failing field becomes a domain.ValidationError.
func structRules[T any](kind domain.EntityKind) func(T) error {
	return func(rec T) error {
		err := validate.Struct(rec)
		if err == nil {
			return nil
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return domain.ValidationError{Entity: kind, Reason: err.Error()}
		}
		fe := fieldErrs[0]
		return domain.ValidationError{Entity: kind, Field: fe.Field(), Reason: reason(fe)}
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid e-mail address"
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	case "gte":
		return "must be at least " + fe.Param()
	case "nefield":
		return "must differ from " + toSnake(fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
