// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package config provides centralized configuration management for ReelMatch.

Configuration is layered with koanf: built-in defaults, then an optional
YAML file, then environment variables. Later layers override earlier ones.

# Configuration File

The file is looked up via CONFIG_PATH, then in DefaultConfigPaths. A minimal
example:

	data:
	  dir: /data/movies
	recommend:
	  vectorizer: tfidf
	  similarity_mode: neighbors
	artifacts:
	  backend: badger
	  path: /data/artifacts

# Environment Variables

Every setting has an explicitly mapped variable, for example DATA_DIR,
RECOMMEND_VECTORIZER, RECOMMEND_FORCE_REBUILD, ARTIFACT_BACKEND,
MINIO_ENDPOINT, DUCKDB_PATH, HTTP_PORT, CORS_ORIGINS and LOG_LEVEL. See
envTransformFunc for the full table.
*/
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// DataConfig locates the raw CSV inputs
type DataConfig struct {
	// Dir holds movies_metadata.csv, credits.csv and keywords.csv.
	Dir string `koanf:"dir"`
}

// RecommendConfig tunes the build pipeline and query defaults
type RecommendConfig struct {
	Vectorizer        string        `koanf:"vectorizer"`      // count or tfidf
	SimilarityMode    string        `koanf:"similarity_mode"` // neighbors or matrix
	Workers           int           `koanf:"workers"`         // 0 = GOMAXPROCS
	MaxMatrixRows     int           `koanf:"max_matrix_rows"`
	DefaultTopN       int           `koanf:"default_top_n"`
	DefaultTopRated   int           `koanf:"default_top_rated"`
	DefaultPercentile float64       `koanf:"default_percentile"`
	ScoreCutoff       int           `koanf:"score_cutoff"`
	SearchLimit       int           `koanf:"search_limit"`
	TopGenres         int           `koanf:"top_genres"`
	ForceRebuild      bool          `koanf:"force_rebuild"` // ignore every stored artifact
	ResultCacheSize   int           `koanf:"result_cache_size"`
	ResultCacheTTL    time.Duration `koanf:"result_cache_ttl"`

	// WarmupOnStart builds the corpus when the server starts instead of
	// on the first query.
	WarmupOnStart bool `koanf:"warmup_on_start"`
}

// ArtifactsConfig selects where built structures are persisted
type ArtifactsConfig struct {
	Backend            string      `koanf:"backend"` // file, badger, minio or none
	Path               string      `koanf:"path"`    // directory for file and badger
	Minio              MinioConfig `koanf:"minio"`
	IOLimitBytesPerSec int64       `koanf:"io_limit_bytes_per_sec"` // 0 = unlimited
}

// MinioConfig locates an S3-compatible bucket for the minio backend
type MinioConfig struct {
	Endpoint         string        `koanf:"endpoint"`
	AccessKey        string        `koanf:"access_key"`
	SecretKey        string        `koanf:"secret_key"`
	Bucket           string        `koanf:"bucket"`
	Prefix           string        `koanf:"prefix"`
	Secure           bool          `koanf:"secure"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
}

// DatabaseConfig holds DuckDB catalog settings
type DatabaseConfig struct {
	// Enabled stores the merged table in DuckDB and adds SQL aggregates
	// to /api/v1/stats.
	Enabled   bool   `koanf:"enabled"`
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
