package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vocdoni/api-migrations/errors"
	"go.vocdoni.io/dvote/log"
)

// ValidatedModelKey is the context key of the validated request model.
type ValidatedModelKey struct{}

// ValidationError represents an individual validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a slice of ValidationError.
type ValidationErrors []ValidationError

// Error returns a string representation of the validation errors.
func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// ValidateMiddleware decodes the JSON request body into a new instance of the
// model type and validates it. On success the instance (a pointer) is added
// to the request context and the body is restored for downstream handlers.
// Being mounted on the routes, it sees the body after the payload migrations
// ran, so it validates the current API shape.
func (v *Validator) ValidateMiddleware(model any) func(next http.Handler) http.Handler {
	modelType := reflect.TypeOf(model)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Create a new instance of the model.
			instance := reflect.New(modelType).Interface()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errors.ErrMalformedBody.Write(w)
				return
			}
			// Restore the body for downstream handlers.
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			if err := json.Unmarshal(body, instance); err != nil {
				errors.ErrMalformedBody.Write(w)
				return
			}

			if err := v.validator.Struct(instance); err != nil {
				validationErrors := FieldErrors(err)
				log.Debugw("validation errors", "errors", validationErrors)
				errors.ErrMalformedBody.WithErr(validationErrors).Write(w)
				return
			}
			ctx := context.WithValue(r.Context(), ValidatedModelKey{}, instance)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FieldErrors converts a go-playground validation error into
// ValidationErrors. Other errors are returned as a single entry.
func FieldErrors(err error) ValidationErrors {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}
	var validationErrors ValidationErrors
	for _, fieldErr := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldErr.Namespace(),
			Message: getErrorMessage(fieldErr),
		})
	}
	return validationErrors
}

// GetValidatedModel retrieves the validated model from the context.
func GetValidatedModel(ctx context.Context) (any, bool) {
	model := ctx.Value(ValidatedModelKey{})
	return model, model != nil
}

// getErrorMessage returns a human-readable error message for a validation error.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "required_if":
		return "This field is required"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", err.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", err.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long", err.Param())
	case "apiversion":
		return "Invalid API version (e.g. 2017-12-24 or 1.2.0)"
	case "pathpattern":
		return "Path pattern must start with /"
	case "unique":
		return "Values must be unique"
	default:
		return fmt.Sprintf("Invalid value: %s", err.Tag())
	}
}
