package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-notify-api/internal/domain"
	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

func init() {
	// Report json field names so clients see the keys they sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates the given struct using its validate tags.
// Every failing field is collected into a *domain.ValidationError; the first
// failure does not short-circuit the rest.
func Struct(s interface{}, message string) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	verr := &domain.ValidationError{Message: message}
	for _, fe := range ve {
		verr.Add(fe.Field(), describe(fe))
	}
	return verr
}

// Var validates a single value against tag and records a failure on verr.
func Var(verr *domain.ValidationError, field string, value interface{}, tag string) {
	err := v.Var(value, tag)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		verr.Add(field, describeAs(field, ve[0]))
		return
	}
	verr.Add(field, err.Error())
}

func describe(fe validator.FieldError) string {
	return describeAs(fe.Field(), fe)
}

func describeAs(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	}
	return fmt.Sprintf("%s failed '%s'", field, fe.Tag())
}
