// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"time"

	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/features"
)

// ErrUnavailable wraps every initialization failure. Callers can match it
// to report the service as unavailable, and still match the underlying
// cause (features.ErrDataUnavailable, artifact.ErrCorrupt, ...).
var ErrUnavailable = errors.New("recommendation service unavailable")

// unknownField replaces empty string fields in top-rated output.
const unknownField = "Unknown"

// SearchResult is one fuzzy title match.
type SearchResult struct {
	Title       string   `json:"title"`
	Score       int      `json:"score"`
	Genres      []string `json:"genres"`
	ReleaseDate string   `json:"release_date"`
}

// Recommendation is one similar movie.
type Recommendation struct {
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Genres      []string `json:"genres"`
}

// QueryRecommendations is the result of RecommendForQuery. Title is the
// canonical title the query resolved to, empty when nothing matched.
type QueryRecommendations struct {
	Query           string           `json:"query"`
	Title           string           `json:"title"`
	Score           int              `json:"score"`
	Recommendations []Recommendation `json:"recommendations"`
}

// TopRatedMovie is one row of the popularity chart.
type TopRatedMovie struct {
	Title          string  `json:"title"`
	VoteCount      int64   `json:"vote_count"`
	VoteAverage    float64 `json:"vote_average"`
	WeightedRating float64 `json:"weighted_rating"`
	ReleaseDate    string  `json:"release_date"`
}

// State is the service lifecycle state.
type State string

const (
	StatePending      State = "pending"
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateFailed       State = "failed"
)

// StageSource records whether a pipeline stage was reused or rebuilt.
type StageSource string

const (
	SourceCache StageSource = "cache"
	SourceBuild StageSource = "build"
)

// BuildInfo describes the structures the service is serving.
type BuildInfo struct {
	Vectorizer     string                 `json:"vectorizer"`
	SimilarityMode string                 `json:"similarity_mode"`
	Rows           int                    `json:"rows"`
	Vocabulary     int                    `json:"vocabulary"`
	NonZero        int                    `json:"non_zero"`
	Stages         map[string]StageSource `json:"stages"`
	Report         *features.BuildReport  `json:"report,omitempty"`
	BuiltAt        time.Time              `json:"built_at"`
	Duration       time.Duration          `json:"duration"`
}

// Status is the readiness snapshot returned by Service.Status.
type Status struct {
	State State      `json:"state"`
	Error string     `json:"error,omitempty"`
	Build *BuildInfo `json:"build,omitempty"`
}

// Ready reports whether queries can be answered.
func (s Status) Ready() bool {
	return s.State == StateReady
}

// DatasetStats is the response of Service.Stats.
type DatasetStats struct {
	Dataset features.DatasetStats  `json:"dataset"`
	Catalog *database.CatalogStats `json:"catalog,omitempty"`
	Build   BuildInfo              `json:"build"`
}
