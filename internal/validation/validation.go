// Package validation checks request payloads and reports failures as
// field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"fbclone/internal/models"

	"github.com/go-playground/validator/v10"
)

var emailRegex = regexp.MustCompile(`^\w+([-+.']\w+)*@\w+([-.]\w+)*\.\w+([-.]\w+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report the JSON name so field errors match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "account_email", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates s and returns the first failing field, in declaration
// order, as models.FieldErrors. Non-struct input is a programming error and
// is returned unchanged.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	return models.NewFieldError(first.Field(), message(first))
}

// Email reports whether s is an acceptable account email.
func Email(s string) bool {
	return emailRegex.MatchString(s)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "account_email", "email":
		return "Email is invalid"
	case "min":
		n, err := strconv.Atoi(fe.Param())
		if err != nil {
			return "too short"
		}
		return fmt.Sprintf("length must be greater than %d", n-1)
	case "max":
		return fmt.Sprintf("length must be at most %s", fe.Param())
	case "required", "notblank":
		return "cannot be empty"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "is invalid"
}
