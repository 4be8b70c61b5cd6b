// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected field of a signup payload.
type FieldError struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// ValidationError is returned when a payload doesn't describe an
// acceptable signup. It's the only error callers should show to users.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i := range e.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", strings.Join(e.Errors[i].Path, "."), e.Errors[i].Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (e *ValidationError) add(code, field, message string) {
	path := []string{}
	if field != "" {
		path = []string{field}
	}
	e.Errors = append(e.Errors, FieldError{Code: code, Path: path, Message: message})
}

func (e *ValidationError) has(field string) bool {
	for i := range e.Errors {
		if len(e.Errors[i].Path) > 0 && e.Errors[i].Path[0] == field {
			return true
		}
	}
	return false
}

// signupInput is a payload which passed validation.
type signupInput struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Organization string  `json:"organization" validate:"required"`
	Message      *string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "Name is required",
	},
	"email": {
		"required": "Email is required",
		"email":    "Please enter a valid email address",
	},
	"organization": {
		"required": "Organization is required",
	},
}

// parseSignup checks an untyped payload (a decoded JSON object or form
// values) and returns the typed signup it describes. Every problem is
// collected into a *ValidationError rather than stopping at the first.
func parseSignup(payload map[string]interface{}) (*signupInput, error) {
	verr := &ValidationError{}
	in := &signupInput{
		Name:         requiredString(verr, payload, "name"),
		Email:        requiredString(verr, payload, "email"),
		Organization: requiredString(verr, payload, "organization"),
	}
	if v, ok := payload["message"]; ok && v != nil {
		if s, ok := v.(string); ok {
			in.Message = &s
		} else {
			verr.add("invalid_type", "message", fmt.Sprintf("Expected string, received %s", typeName(v)))
		}
	}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		for _, fe := range fieldErrs {
			if verr.has(fe.Field()) {
				continue // already reported as a type problem
			}
			verr.add(codeFor(fe.Tag()), fe.Field(), messageFor(fe.Field(), fe.Tag()))
		}
	}

	if len(verr.Errors) > 0 {
		return nil, verr
	}
	return in, nil
}

// requiredString pulls key out of payload, recording an error on verr
// when it's missing or not a string.
func requiredString(verr *ValidationError, payload map[string]interface{}, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		verr.add("invalid_type", key, "Required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		verr.add("invalid_type", key, fmt.Sprintf("Expected string, received %s", typeName(v)))
		return ""
	}
	return s
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return "too_small"
	case "email":
		return "invalid_string"
	}
	return "custom"
}

func messageFor(field, tag string) string {
	if msg, ok := fieldMessages[field][tag]; ok {
		return msg
	}
	return fmt.Sprintf("Invalid %s", field)
}

// typeName names a decoded JSON value the way a client would.
func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case string:
		return "string"
	}
	return fmt.Sprintf("%T", v)
}
