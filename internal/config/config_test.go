// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	rec := recommend.DefaultConfig()
	if cfg.Recommend.Vectorizer != rec.Vectorizer {
		t.Errorf("Recommend.Vectorizer = %q, want %q", cfg.Recommend.Vectorizer, rec.Vectorizer)
	}
	if cfg.Recommend.SimilarityMode != "neighbors" {
		t.Errorf("Recommend.SimilarityMode = %q, want neighbors", cfg.Recommend.SimilarityMode)
	}
	if cfg.Recommend.DefaultTopN != 15 {
		t.Errorf("Recommend.DefaultTopN = %d, want 15", cfg.Recommend.DefaultTopN)
	}
	if cfg.Recommend.ForceRebuild {
		t.Error("Recommend.ForceRebuild should be false by default")
	}
	if cfg.Artifacts.Backend != "file" {
		t.Errorf("Artifacts.Backend = %q, want file", cfg.Artifacts.Backend)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled should be false by default")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Data.Dir != "/data/movies" {
		t.Errorf("Data.Dir = %q, want /data/movies", cfg.Data.Dir)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("DATA_DIR", "/srv/movies")
	t.Setenv("RECOMMEND_VECTORIZER", "tfidf")
	t.Setenv("RECOMMEND_FORCE_REBUILD", "true")
	t.Setenv("RECOMMEND_RESULT_CACHE_TTL", "90s")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Data.Dir != "/srv/movies" {
		t.Errorf("Data.Dir = %q, want /srv/movies", cfg.Data.Dir)
	}
	if cfg.Recommend.Vectorizer != "tfidf" {
		t.Errorf("Recommend.Vectorizer = %q, want tfidf", cfg.Recommend.Vectorizer)
	}
	if !cfg.Recommend.ForceRebuild {
		t.Error("Recommend.ForceRebuild should be true")
	}
	if cfg.Recommend.ResultCacheTTL != 90*time.Second {
		t.Errorf("Recommend.ResultCacheTTL = %v, want 90s", cfg.Recommend.ResultCacheTTL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	want := []string{"https://a.example", "https://b.example"}
	if strings.Join(cfg.Security.CORSOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
data:
  dir: /from/file
recommend:
  similarity_mode: matrix
  default_top_n: 20
artifacts:
  backend: badger
  path: /from/file/artifacts
server:
  port: 7000
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Data.Dir != "/from/file" {
		t.Errorf("Data.Dir = %q, want /from/file", cfg.Data.Dir)
	}
	if cfg.Recommend.SimilarityMode != "matrix" {
		t.Errorf("Recommend.SimilarityMode = %q, want matrix", cfg.Recommend.SimilarityMode)
	}
	if cfg.Recommend.DefaultTopN != 20 {
		t.Errorf("Recommend.DefaultTopN = %d, want 20", cfg.Recommend.DefaultTopN)
	}
	if cfg.Artifacts.Backend != "badger" {
		t.Errorf("Artifacts.Backend = %q, want badger", cfg.Artifacts.Backend)
	}
	// env beats file
	if cfg.Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100", cfg.Server.Port)
	}
	// untouched defaults survive
	if cfg.Recommend.ScoreCutoff != recommend.DefaultConfig().ScoreCutoff {
		t.Errorf("Recommend.ScoreCutoff = %d, want default", cfg.Recommend.ScoreCutoff)
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("ARTIFACT_BACKEND", "floppy")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"DATA_DIR", "data.dir"},
		{"RECOMMEND_FORCE_REBUILD", "recommend.force_rebuild"},
		{"MINIO_ENDPOINT", "artifacts.minio.endpoint"},
		{"DUCKDB_ENABLED", "database.enabled"},
		{"HTTP_PORT", "server.port"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"empty data dir", func(c *Config) { c.Data.Dir = " " }, "DATA_DIR"},
		{"bad vectorizer", func(c *Config) { c.Recommend.Vectorizer = "bm25" }, "recommend"},
		{"bad similarity mode", func(c *Config) { c.Recommend.SimilarityMode = "ann" }, "recommend"},
		{"score cutoff too high", func(c *Config) { c.Recommend.ScoreCutoff = 100 }, "score_cutoff"},
		{"score cutoff zero", func(c *Config) { c.Recommend.ScoreCutoff = 0 }, "score_cutoff"},
		{"file backend without path", func(c *Config) { c.Artifacts.Path = "" }, "ARTIFACT_PATH"},
		{"none backend without path", func(c *Config) {
			c.Artifacts.Backend = "none"
			c.Artifacts.Path = ""
		}, ""},
		{"negative io limit", func(c *Config) { c.Artifacts.IOLimitBytesPerSec = -1 }, "ARTIFACT_IO_LIMIT"},
		{"minio without endpoint", func(c *Config) { c.Artifacts.Backend = "minio" }, "MINIO_ENDPOINT"},
		{"minio endpoint with scheme", func(c *Config) {
			c.Artifacts.Backend = "minio"
			c.Artifacts.Minio.Endpoint = "http://minio:9000"
		}, "scheme"},
		{"minio without credentials", func(c *Config) {
			c.Artifacts.Backend = "minio"
			c.Artifacts.Minio.Endpoint = "minio:9000"
		}, "MINIO_ACCESS_KEY"},
		{"minio complete", func(c *Config) {
			c.Artifacts.Backend = "minio"
			c.Artifacts.Minio.Endpoint = "minio:9000"
			c.Artifacts.Minio.AccessKey = "ak"
			c.Artifacts.Minio.SecretKey = "sk"
		}, ""},
		{"database without path", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Path = ""
		}, "DUCKDB_PATH"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, "ENVIRONMENT"},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQS"},
		{"zero rate limit disabled", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRecommendConfigService(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.ForceRebuild = true
	rc := cfg.Recommend.Service("/srv/movies")

	if rc.DataDir != "/srv/movies" {
		t.Errorf("DataDir = %q, want /srv/movies", rc.DataDir)
	}
	if !rc.ForceRebuild {
		t.Error("ForceRebuild not carried over")
	}
	if rc.ResultCacheTTL != cfg.Recommend.ResultCacheTTL {
		t.Errorf("ResultCacheTTL = %v, want %v", rc.ResultCacheTTL, cfg.Recommend.ResultCacheTTL)
	}
}
