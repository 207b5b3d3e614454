// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package features builds the merged movie feature table from the raw
// metadata, credits, and keywords datasets.
//
// # Pipeline
//
// The builder runs a fixed sequence of steps over the raw CSV sources:
//
//  1. Deduplicate metadata rows by raw id (first occurrence wins)
//  2. Drop rows whose adult flag is not exactly "True" or "False"
//  3. Coerce ids to integers and left-join credits and keywords by id
//  4. Parse the stringified list columns (cast, crew, keywords, genres)
//  5. Extract the director from the crew list
//  6. Keep the first three cast members, keywords, and genres
//  7. Normalize names (lowercase, spaces removed)
//  8. Derive the "soup" text used for similarity
//  9. Coerce vote_count and vote_average
//
// Malformed list columns are fail-soft: the row keeps an empty list and the
// failure is counted in the BuildReport. Missing sources and structural join
// problems are fatal (ErrDataUnavailable, *MergeError).
//
// # Immutability
//
// A Table is never modified after construction. Accessors return copies of
// the record slice so callers cannot reorder rows out from under the
// similarity index, which is aligned to table row order.
package features
