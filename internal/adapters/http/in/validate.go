package httpin

import (
	"reflect"
	"strings"

	"gopkg.in/go-playground/validator.v9"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// validateShape runs the struct-tag validation required before the
// request is even worth handing to the business Validator: missing
// fields, empty split lists. This is the HTTP boundary's own concern,
// kept separate from the business rules in internal/domain/validator.
func validateShape(dto captureRequestDTO) error {
	return structValidator.Struct(dto)
}
