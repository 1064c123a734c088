// Package validation wraps go-playground/validator so that failures come back
// as field keyed messages in the API error envelope.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "notas/internal/errors"
)

// DateLayouts are the accepted formats for date fields, tried in order.
var DateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator that reports fields by their json names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	return &Validator{validate: v}
}

// Validate returns a *errors.ValidationError when i violates its tags.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := apperrors.NewValidationError()
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// ParseDate parses s with the first matching layout in DateLayouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "date":
		return fmt.Sprintf("The %s is not a valid date.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}
