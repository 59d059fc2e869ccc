package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/authz"
)

// NewValidator builds a validator with the role and status membership
// checks registered, keeping authz as the single source of truth for the
// enumerations. Violations report the json field name, which is what the
// error contract speaks.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("validrole", func(fl validator.FieldLevel) bool {
		return authz.IsValidRole(fl.Field().String())
	})
	_ = v.RegisterValidation("validstatus", func(fl validator.FieldLevel) bool {
		return authz.IsValidStatus(fl.Field().String())
	})
	return v
}

// AsValidationError converts validator violations into the per-field 422
// contract. Non-validator errors pass through unchanged.
func AsValidationError(err error) error {
	if err == nil {
		return nil
	}
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}
	fields := make(map[string][]string, len(violations))
	for _, violation := range violations {
		field := strings.ToLower(violation.Field())
		fields[field] = append(fields[field], validationMessage(field, violation))
	}
	return &ValidationError{Fields: fields}
}

func validationMessage(field string, v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, v.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, v.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, v.Param())
	case "validrole":
		return fmt.Sprintf("The %s must be a valid role.", field)
	case "validstatus":
		return fmt.Sprintf("The %s must be a valid status.", field)
	case "datetime":
		return fmt.Sprintf("The %s does not match the expected format.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
