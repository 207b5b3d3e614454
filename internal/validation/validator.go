// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package validation validates API request parameters with
// go-playground/validator v10.
//
// A single validator instance is shared process-wide. Field names in
// errors are taken from the `query` struct tag so clients see the names
// they sent:
//
//	req := validation.RecommendRequest{Title: title, TopN: 500}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // details: {"top_n": "top_n must be at most 100"}
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/reelmatch/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed constraint.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string { return e.Message }

// RequestValidationError collects every failed constraint of a request.
type RequestValidationError struct {
	Fields []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// ToAPIError converts the failure to the VALIDATION_ERROR wire format.
// Details map each offending parameter to its message.
func (ve *RequestValidationError) ToAPIError() *models.APIError {
	apiErr := &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: "Validation failed",
	}
	switch len(ve.Fields) {
	case 0:
		return apiErr
	case 1:
		apiErr.Message = ve.Fields[0].Message
	default:
		apiErr.Message = "Invalid request parameters"
	}

	apiErr.Details = make(map[string]interface{}, len(ve.Fields))
	for _, f := range ve.Fields {
		apiErr.Details[f.Field] = f.Message
	}
	return apiErr
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(queryName)
	})
	return validate
}

// queryName reports a field by its query parameter name, falling back to
// the Go field name.
func queryName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("query"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

// ValidateStruct validates s. It returns nil when every constraint holds.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{
			Field:   "request",
			Tag:     "invalid",
			Message: err.Error(),
		}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{Fields: out}
}

func translate(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
