// Package validator checks request structs against `validate` struct tags
// and reports failures as field-level [ValidationErrors].
//
// Field names come from the `json` tag so they match what clients send:
//
//	type Request struct {
//	    Host string `json:"host" validate:"required,hostname_rfc1123|ip"`
//	    Port int    `json:"port" validate:"required,min=1,max=65535"`
//	}
//
//	if err := validator.Struct(req); err != nil {
//	    ve := validator.ExtractValidationErrors(err)
//	    // ve.Fields() == []string{"host", "port"}
//	}
//
// Each error names the failed Rule (required, min_length, host, ...) with the
// rule Params, so clients can render their own messages.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *playground.Validate
}

// New creates a Validator that names fields by their json tag.
func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// RegisterValidation adds a custom tag.
func (v *Validator) RegisterValidation(tag string, fn func(value string) bool) error {
	return v.validate.RegisterValidation(tag, func(fl playground.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

// Struct validates s and returns ValidationErrors when any rule fails.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *playground.InvalidValidationError
	if errors.As(err, &invalid) {
		return errors.Join(ErrInvalidInput, err)
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, convert(fe))
	}
	return out
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Struct validates s with a shared default Validator.
func Struct(s any) error {
	defaultOnce.Do(func() { defaultValidator = New() })
	return defaultValidator.Struct(s)
}

func convert(fe playground.FieldError) ValidationError {
	field := fe.Field()
	values := map[string]any{}
	param := paramValue(fe.Param())

	var key, msg string
	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		key, msg = "required", "is required"
	case "min", "gte":
		key, msg = bound(fe.Kind(), "min", param, values)
	case "max", "lte":
		key, msg = bound(fe.Kind(), "max", param, values)
	case "len":
		switch fe.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			values["count"] = param
			key, msg = "exact_items", fmt.Sprintf("must contain exactly %v items", param)
		default:
			values["length"] = param
			key, msg = "exact_length", fmt.Sprintf("must be exactly %v characters long", param)
		}
	case "email":
		key, msg = "email", "must be a valid email address"
	case "oneof":
		values["values"] = fe.Param()
		key, msg = "one_of", "must be one of: "+strings.Join(strings.Fields(fe.Param()), ", ")
	case "hostname", "hostname_rfc1123", "fqdn", "ip", "hostname_rfc1123|ip", "hostname|ip":
		key, msg = "host", "must be a valid host name or IP address"
	default:
		values["rule"] = fe.Tag()
		key, msg = "invalid", "is invalid"
	}

	return ValidationError{
		Field:   field,
		Message: msg,
		Rule:    key,
		Params:  values,
	}
}

func bound(kind reflect.Kind, which string, param any, values map[string]any) (string, string) {
	values[which] = param
	atLeast := which == "min"

	switch kind {
	case reflect.String:
		if atLeast {
			return "min_length", fmt.Sprintf("must be at least %v characters long", param)
		}
		return "max_length", fmt.Sprintf("must not exceed %v characters", param)
	case reflect.Slice, reflect.Array, reflect.Map:
		if atLeast {
			return "min_items", fmt.Sprintf("must contain at least %v items", param)
		}
		return "max_items", fmt.Sprintf("must not contain more than %v items", param)
	default:
		if atLeast {
			return "min", fmt.Sprintf("must be at least %v", param)
		}
		return "max", fmt.Sprintf("must not exceed %v", param)
	}
}

func paramValue(p string) any {
	if n, err := strconv.Atoi(p); err == nil {
		return n
	}
	return p
}
