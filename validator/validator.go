// Package validator validates API inputs and migration definitions with
// go-playground/validator, adding the domain specific tags.
package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vocdoni/api-migrations/migrations"
)

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("apiversion", validateAPIVersion)
	_ = v.RegisterValidation("pathpattern", validatePathPattern)

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct using the validator package.
func (v *Validator) Validate(s any) error {
	return v.validator.Struct(s)
}

// validateAPIVersion validates a version token, like 2017-12-24 or 1.2.0.
func validateAPIVersion(fl validator.FieldLevel) bool {
	// If the field is empty, it's valid (use required tag if it's required)
	if fl.Field().String() == "" {
		return true
	}
	_, err := migrations.ParseNumber(fl.Field().String())
	return err == nil
}

// validatePathPattern validates a migration path pattern, which must be
// absolute.
func validatePathPattern(fl validator.FieldLevel) bool {
	if fl.Field().String() == "" {
		return true
	}
	return strings.HasPrefix(fl.Field().String(), "/")
}
