package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// V is the singleton validator instance
var V *validator.Validate

func init() {
	V = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	V.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(msgs, "; ")
}

// Validate validates a struct and returns ValidationErrors if invalid
func Validate(v any) error {
	if err := V.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(errs)
		}
		return err
	}
	return nil
}

// formatValidationErrors converts validator errors to ValidationErrors
func formatValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	validationErrors := make(ValidationErrors, 0, len(errs))
	for _, e := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   e.Field(),
			Message: getErrorMessage(e),
		})
	}
	return validationErrors
}

// getErrorMessage returns a human-readable error message for a validation error
func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}
