package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"userapi/internal/models"
)

// Validator checks request payloads and reports every field violation,
// not just the first.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. Field names in violations use the json tag so
// they match what the caller actually sent.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Check validates s against its struct tags and returns the list of field
// violations. A nil return means the payload is valid.
func (v *Validator) Check(s any) []models.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.FieldError{{Field: "", RejectedValue: nil, Message: err.Error()}}
	}

	fieldErrors := make([]models.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:         fe.Field(),
			RejectedValue: fe.Value(),
			Message:       messageFor(fe),
		})
	}
	return fieldErrors
}

// messageFor maps a failed rule to its human message.
func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "email":
		switch fe.Tag() {
		case "required":
			return "Email is required"
		case "email":
			return "Email should be valid"
		case "max":
			return "Email must not exceed 255 characters"
		}
	case "password":
		switch fe.Tag() {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 6 characters"
		}
	case "name":
		switch fe.Tag() {
		case "required":
			return "Name is required"
		case "min", "max":
			return "Name must be between 2 and 50 characters"
		}
	}
	return "Invalid value"
}
