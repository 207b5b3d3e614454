// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateArtifacts(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateData() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	return nil
}

// validateRecommend defers to the recommend package so both layers agree
// on what a usable pipeline configuration is.
func (c *Config) validateRecommend() error {
	rc := c.Recommend.Service(c.Data.Dir)
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	if c.Artifacts.IOLimitBytesPerSec < 0 {
		return fmt.Errorf("ARTIFACT_IO_LIMIT must be non-negative (got %d)", c.Artifacts.IOLimitBytesPerSec)
	}
	switch c.Artifacts.Backend {
	case "file", "badger":
		if c.Artifacts.Path == "" {
			return fmt.Errorf("ARTIFACT_PATH is required when ARTIFACT_BACKEND=%s", c.Artifacts.Backend)
		}
	case "minio":
		return c.validateMinio()
	case "none":
	default:
		return fmt.Errorf("ARTIFACT_BACKEND must be one of file, badger, minio, none (got %q)", c.Artifacts.Backend)
	}
	return nil
}

func (c *Config) validateMinio() error {
	m := c.Artifacts.Minio
	if m.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required when ARTIFACT_BACKEND=minio")
	}
	if strings.Contains(m.Endpoint, "://") {
		return fmt.Errorf("MINIO_ENDPOINT must be host[:port] without a scheme (got %q)", m.Endpoint)
	}
	if m.Bucket == "" {
		return fmt.Errorf("MINIO_BUCKET is required when ARTIFACT_BACKEND=minio")
	}
	if m.AccessKey == "" || m.SecretKey == "" {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when ARTIFACT_BACKEND=minio")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if !c.Database.Enabled {
		return nil
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required when DUCKDB_ENABLED=true")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative (got %d)", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535 (got %d)", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive (got %s)", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production (got %q)", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQS must be positive (got %d)", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive (got %s)", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
	return nil
}
