// Package validator wraps go-playground/validator. Field errors are reported
// under the request's json or form name, so clients see "pageSize" rather
// than "PageSize".
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(requestFieldName)
	return &Validator{v: v}
}

func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// FieldErrors flattens validation failures into field -> failed tag.
// Non-validation errors yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func requestFieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}
