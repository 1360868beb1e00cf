// Package validation rejects incomplete form submissions before they reach
// storage. Required fields are declared with `validate:"notblank"` tags on each
// endpoint's request struct; a field is missing when it is absent or empty
// after trimming. Only presence is checked, never format.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Request is implemented by every endpoint input struct. RequiredMessage is
// the client-facing reason returned when a required field is missing.
type Request interface {
	RequiredMessage() string
}

// Error is a client-fixable validation failure.
type Error struct {
	Reason string
	// Fields lists the JSON names of the offending fields, for logs only.
	Fields []string
}

func (e *Error) Error() string {
	return e.Reason
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank only fails on strings that trim to empty; registration of a
	// built-in function name cannot fail.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Check validates req and returns *Error when any required field is missing.
func (v *Validator) Check(req Request) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return &Error{Reason: req.RequiredMessage(), Fields: fields}
}

// AsError unwraps a validation failure from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
