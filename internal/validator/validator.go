package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError maps a json field name to a human readable message.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e.Errors[field]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator reports failures keyed by the request's field names.
type Validator struct {
	validate *validator.Validate
}

// New panics if a custom rule cannot be registered, which only happens when
// the rule table itself is broken.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	if err := registerCustomRules(v); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// fieldName prefers the json name, then the form name used by multipart
// requests.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return fld.Name
}

// Validate returns *ValidationError when i fails any rule.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Errors: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors[fe.Field()] = messageFor(fe)
	}
	return out
}
