// Package validation validates HTTP request structs with go-playground/validator.
// Field names in messages use the json tag so they match the request body.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pathwise-edu/pathwise/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// Error aggregates field errors. It unwraps to domain.ErrValidation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return domain.ErrValidation.Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error { return domain.ErrValidation }

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s. Returns nil or *Error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	out := &Error{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return out
}

var simpleMessages = map[string]string{
	"required": "%s is required",
	"url":      "%s must be a valid URL",
	"http_url": "%s must be an http(s) URL",
}

var paramMessages = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tmpl, ok := simpleMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
