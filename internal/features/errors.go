// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable is returned when a required raw source cannot be found.
	ErrDataUnavailable = errors.New("raw data source unavailable")

	// ErrMissingColumn indicates a required column is absent from a source header.
	ErrMissingColumn = errors.New("required column missing")

	// ErrInvalidID indicates an id value that cannot be coerced to an integer.
	ErrInvalidID = errors.New("id is not an integer")
)

// MergeError describes a structural failure while joining the raw sources.
type MergeError struct {
	Source string
	Column string
	Row    int // 1-based data row, 0 when the failure concerns the header
	Value  string
	Err    error
}

func (e *MergeError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("merge %s: column %q row %d value %q: %v", e.Source, e.Column, e.Row, e.Value, e.Err)
	}
	return fmt.Sprintf("merge %s: column %q: %v", e.Source, e.Column, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
