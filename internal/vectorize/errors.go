// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vectorize

import (
	"errors"
	"fmt"
)

// ErrEmptyCorpus is returned when there is nothing to vectorize: no
// documents, only blank documents, or only stop words.
var ErrEmptyCorpus = errors.New("empty corpus")

// VectorizeError reports a structural vectorization failure.
type VectorizeError struct {
	Vectorizer string
	Documents  int
	Err        error
}

func (e *VectorizeError) Error() string {
	return fmt.Sprintf("%s vectorizer over %d documents: %v", e.Vectorizer, e.Documents, e.Err)
}

func (e *VectorizeError) Unwrap() error {
	return e.Err
}
