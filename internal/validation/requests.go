// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package validation

// SearchRequest holds /api/v1/search parameters.
type SearchRequest struct {
	Q string `query:"q" validate:"required,min=1,max=200"`
}

// RecommendRequest holds /api/v1/recommend parameters. Fuzzy resolves Title
// through the title search first; otherwise Title must be canonical.
type RecommendRequest struct {
	Title string `query:"title" validate:"required,min=1,max=200"`
	TopN  int    `query:"top_n" validate:"min=1,max=100"`
	Fuzzy bool   `query:"fuzzy"`
}

// TopRatedRequest holds /api/v1/top-rated parameters.
type TopRatedRequest struct {
	TopN       int     `query:"top_n" validate:"min=1,max=1000"`
	Percentile float64 `query:"percentile" validate:"gte=0,lte=1"`
}
