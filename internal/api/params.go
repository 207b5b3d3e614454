// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/reelmatch/internal/validation"
)

// queryParser reads typed query parameters, collecting syntax errors so a
// request reports every malformed parameter at once.
type queryParser struct {
	values url.Values
	errs   []validation.FieldError
}

func newQueryParser(values url.Values) *queryParser {
	return &queryParser{values: values}
}

func (p *queryParser) fail(name, raw, want string) {
	p.errs = append(p.errs, validation.FieldError{
		Field:   name,
		Tag:     want,
		Value:   raw,
		Message: fmt.Sprintf("%s must be %s", name, article(want)),
	})
}

func article(kind string) string {
	if kind == "integer" {
		return "an integer"
	}
	return "a " + kind
}

func (p *queryParser) String(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

func (p *queryParser) Int(name string, def int) int {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name, raw, "integer")
		return def
	}
	return v
}

func (p *queryParser) Float(name string, def float64) float64 {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(name, raw, "number")
		return def
	}
	return v
}

func (p *queryParser) Bool(name string, def bool) bool {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, raw, "boolean")
		return def
	}
	return v
}

// Err returns the collected syntax errors, or nil.
func (p *queryParser) Err() *validation.RequestValidationError {
	if len(p.errs) == 0 {
		return nil
	}
	return &validation.RequestValidationError{Fields: p.errs}
}
