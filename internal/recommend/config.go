// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/popularity"
	"github.com/tomtom215/reelmatch/internal/resolve"
	"github.com/tomtom215/reelmatch/internal/similarity"
	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// Config tunes the recommendation service.
type Config struct {
	// DataDir holds movies_metadata.csv, credits.csv and keywords.csv.
	DataDir string `json:"data_dir"`

	// Vectorizer is "count" (default) or "tfidf".
	Vectorizer string `json:"vectorizer"`

	// SimilarityMode is "neighbors" (default) or "matrix".
	SimilarityMode string `json:"similarity_mode"`

	// Workers bounds index build parallelism. Zero uses GOMAXPROCS.
	Workers int `json:"workers"`

	// MaxMatrixRows refuses matrix mode above this many rows.
	MaxMatrixRows int `json:"max_matrix_rows"`

	DefaultTopN       int     `json:"default_top_n"`
	DefaultTopRated   int     `json:"default_top_rated"`
	DefaultPercentile float64 `json:"default_percentile"`

	// ScoreCutoff and SearchLimit configure the title resolver.
	ScoreCutoff int `json:"score_cutoff"`
	SearchLimit int `json:"search_limit"`

	// TopGenres bounds the genre list in dataset stats.
	TopGenres int `json:"top_genres"`

	// ForceRebuild ignores stored artifacts and rebuilds every stage.
	ForceRebuild bool `json:"force_rebuild"`

	// ResultCacheSize entries are memoized for ResultCacheTTL. A size of
	// zero disables result caching.
	ResultCacheSize int           `json:"result_cache_size"`
	ResultCacheTTL  time.Duration `json:"result_cache_ttl"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:           "data",
		Vectorizer:        vectorize.KindCount,
		SimilarityMode:    string(similarity.ModeNeighbors),
		MaxMatrixRows:     similarity.DefaultMaxMatrixRows,
		DefaultTopN:       15,
		DefaultTopRated:   popularity.DefaultTopN,
		DefaultPercentile: popularity.DefaultPercentile,
		ScoreCutoff:       resolve.DefaultScoreCutoff,
		SearchLimit:       resolve.DefaultLimit,
		TopGenres:         10,
		ResultCacheSize:   1024,
		ResultCacheTTL:    10 * time.Minute,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := vectorize.New(c.Vectorizer); err != nil {
		return err
	}
	if _, err := similarity.ParseMode(c.SimilarityMode); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.New("workers must be non-negative")
	}
	if c.MaxMatrixRows < 0 {
		return errors.New("max_matrix_rows must be non-negative")
	}
	if c.DefaultTopN <= 0 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.DefaultTopRated <= 0 {
		return fmt.Errorf("default_top_rated must be positive, got %d", c.DefaultTopRated)
	}
	if c.DefaultPercentile < 0 || c.DefaultPercentile > 1 {
		return popularity.ErrInvalidPercentile
	}
	if c.ScoreCutoff <= 0 || c.ScoreCutoff >= 100 {
		return fmt.Errorf("score_cutoff must be within (0, 100), got %d", c.ScoreCutoff)
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("search_limit must be positive, got %d", c.SearchLimit)
	}
	if c.ResultCacheSize < 0 {
		return errors.New("result_cache_size must be non-negative")
	}
	return nil
}
