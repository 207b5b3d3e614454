// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package vectorize converts the soup corpus into a sparse bag-of-words
// matrix. Rows follow corpus order and columns follow the lexically sorted
// vocabulary, which is fixed once fitted.
//
// CountVectorizer (raw term frequency) is the default. TFIDFVectorizer is
// the alternate weighting and is selected by name through New.
package vectorize
