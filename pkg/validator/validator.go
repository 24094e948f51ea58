// Package validator checks catalog records, FaaS events and configuration
// against their `validate` struct tags.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// messages phrases a failed tag. A %s verb receives the tag parameter.
var messages = map[string]string{
	"required":      "is required",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"gt":            "must be greater than %s",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"url":           "must be a valid URL",
	"http_url":      "must be a valid URL",
	"oneof":         "must be one of: %s",
	"startswith":    "must start with %q",
	"hostname_port": "must be a host:port pair",
}

// ValidationError lists every field that failed.
type ValidationError struct {
	Errors validator.ValidationErrors
}

// Validate checks s and returns a *ValidationError when any field fails.
func Validate(s any) error {
	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	for i, fe := range e.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "field '%s' %s", fe.Namespace(), describe(fe))
	}
	return b.String()
}

// Fields maps each failed field name to its message.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	if strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}
