// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// DefaultConfigPaths are the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
	"/etc/reelmatch/config.yml",
}

// ConfigPathEnvVar names the environment variable holding an explicit
// config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config populated with the built-in defaults.
// Recommendation defaults come from the recommend package so the two
// cannot drift apart.
func defaultConfig() *Config {
	rec := recommend.DefaultConfig()
	return &Config{
		Data: DataConfig{
			Dir: "/data/movies",
		},
		Recommend: RecommendConfig{
			Vectorizer:        rec.Vectorizer,
			SimilarityMode:    rec.SimilarityMode,
			Workers:           rec.Workers,
			MaxMatrixRows:     rec.MaxMatrixRows,
			DefaultTopN:       rec.DefaultTopN,
			DefaultTopRated:   rec.DefaultTopRated,
			DefaultPercentile: rec.DefaultPercentile,
			ScoreCutoff:       rec.ScoreCutoff,
			SearchLimit:       rec.SearchLimit,
			TopGenres:         rec.TopGenres,
			ForceRebuild:      false,
			ResultCacheSize:   rec.ResultCacheSize,
			ResultCacheTTL:    rec.ResultCacheTTL,
			WarmupOnStart:     true,
		},
		Artifacts: ArtifactsConfig{
			Backend: "file",
			Path:    "/data/artifacts",
			Minio: MinioConfig{
				Bucket:           "reelmatch",
				Prefix:           "artifacts",
				Secure:           true,
				FailureThreshold: 5,
				OpenTimeout:      30 * time.Second,
			},
		},
		Database: DatabaseConfig{
			Enabled:   false,
			Path:      "/data/reelmatch.duckdb",
			MaxMemory: "1GB",
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue // already a slice (from defaults or YAML)
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Data
	"data_dir": "data.dir",

	// Recommendation pipeline
	"recommend_vectorizer":         "recommend.vectorizer",
	"recommend_similarity_mode":    "recommend.similarity_mode",
	"recommend_workers":            "recommend.workers",
	"recommend_max_matrix_rows":    "recommend.max_matrix_rows",
	"recommend_default_top_n":      "recommend.default_top_n",
	"recommend_default_top_rated":  "recommend.default_top_rated",
	"recommend_default_percentile": "recommend.default_percentile",
	"recommend_score_cutoff":       "recommend.score_cutoff",
	"recommend_search_limit":       "recommend.search_limit",
	"recommend_top_genres":         "recommend.top_genres",
	"recommend_force_rebuild":      "recommend.force_rebuild",
	"recommend_result_cache_size":  "recommend.result_cache_size",
	"recommend_result_cache_ttl":   "recommend.result_cache_ttl",
	"recommend_warmup_on_start":    "recommend.warmup_on_start",

	// Artifact store
	"artifact_backend":                "artifacts.backend",
	"artifact_path":                   "artifacts.path",
	"artifact_io_limit":               "artifacts.io_limit_bytes_per_sec",
	"minio_endpoint":                  "artifacts.minio.endpoint",
	"minio_access_key":                "artifacts.minio.access_key",
	"minio_secret_key":                "artifacts.minio.secret_key",
	"minio_bucket":                    "artifacts.minio.bucket",
	"minio_prefix":                    "artifacts.minio.prefix",
	"minio_secure":                    "artifacts.minio.secure",
	"minio_breaker_failure_threshold": "artifacts.minio.failure_threshold",
	"minio_breaker_open_timeout":      "artifacts.minio.open_timeout",

	// DuckDB catalog
	"duckdb_enabled":    "database.enabled",
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
	"cors_origins":       "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are ignored by koanf.
//
// Examples:
//   - DATA_DIR -> data.dir
//   - RECOMMEND_FORCE_REBUILD -> recommend.force_rebuild
//   - MINIO_ENDPOINT -> artifacts.minio.endpoint
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}

// Service translates the recommend section into a recommend.Config rooted
// at dataDir.
func (r RecommendConfig) Service(dataDir string) recommend.Config {
	return recommend.Config{
		DataDir:           dataDir,
		Vectorizer:        r.Vectorizer,
		SimilarityMode:    r.SimilarityMode,
		Workers:           r.Workers,
		MaxMatrixRows:     r.MaxMatrixRows,
		DefaultTopN:       r.DefaultTopN,
		DefaultTopRated:   r.DefaultTopRated,
		DefaultPercentile: r.DefaultPercentile,
		ScoreCutoff:       r.ScoreCutoff,
		SearchLimit:       r.SearchLimit,
		TopGenres:         r.TopGenres,
		ForceRebuild:      r.ForceRebuild,
		ResultCacheSize:   r.ResultCacheSize,
		ResultCacheTTL:    r.ResultCacheTTL,
	}
}
