// Package validate holds the single go-playground/validator instance used
// to check request bodies, with the custom tags the DTOs rely on:
//
//	notblank      string is not empty after trimming whitespace
//	studentemail  address has a dotted domain with a 2+ letter TLD,
//	              e.g. user@example.com (stricter than the built-in "email")
//
// A *validator.Validate caches struct metadata and is safe for concurrent
// use, so one instance serves every request.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("idNumber", not "IDNumber") so
	// messages match what the client sent.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("studentemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// Struct validates s against its validate:"..." tags. A non-nil error is
// always validator.ValidationErrors unless s is not a struct.
func Struct(s any) error {
	return validate.Struct(s)
}
