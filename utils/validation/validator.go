package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sahilchouksey/campus-events/model"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance with the domain tags registered
func NewValidator() *Validator {
	v := validator.New()

	// Report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("organizer", func(fl validator.FieldLevel) bool {
		return model.Organizer(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("coordinator_type", func(fl validator.FieldLevel) bool {
		switch model.CoordinatorType(fl.Field().String()) {
		case model.CoordinatorFaculty, model.CoordinatorStudent:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		switch model.Department(fl.Field().String()) {
		case "", model.DepartmentIT, model.DepartmentCommerce, model.DepartmentLaw:
			return true
		}
		return false
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errs[field] = fmt.Sprintf("%s is required", field)
			case "email":
				errs[field] = "Invalid email format"
			case "min":
				errs[field] = fmt.Sprintf("%s must have at least %s items", field, e.Param())
			case "organizer":
				errs[field] = fmt.Sprintf("%s must be one of %v", field, model.Organizers)
			case "coordinator_type":
				errs[field] = fmt.Sprintf("%s must be FACULTY or STUDENT", field)
			case "department":
				errs[field] = fmt.Sprintf("%s must be IT, COMMERCE or LAW", field)
			default:
				errs[field] = fmt.Sprintf("%s is invalid", field)
			}
		}
	}

	return errs
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}
