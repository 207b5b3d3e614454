// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/artifact"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// components holds everything main wires into the router and closes on
// shutdown.
type components struct {
	store   artifact.Store
	catalog *database.DB
	service *recommend.Service
}

// Close releases the artifact store and catalog.
func (c *components) Close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing artifact store")
		}
	}
	if c.catalog != nil {
		if err := c.catalog.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing catalog")
		}
	}
}

// artifactOptions translates the artifacts section for artifact.Open.
func artifactOptions(cfg *config.ArtifactsConfig) artifact.Options {
	return artifact.Options{
		Backend: cfg.Backend,
		Path:    cfg.Path,
		Minio: artifact.MinioConfig{
			Endpoint:         cfg.Minio.Endpoint,
			AccessKey:        cfg.Minio.AccessKey,
			SecretKey:        cfg.Minio.SecretKey,
			Bucket:           cfg.Minio.Bucket,
			Prefix:           cfg.Minio.Prefix,
			Secure:           cfg.Minio.Secure,
			FailureThreshold: cfg.Minio.FailureThreshold,
			OpenTimeout:      cfg.Minio.OpenTimeout,
		},
		IOLimitBytesPerSec: cfg.IOLimitBytesPerSec,
	}
}

// initComponents opens the artifact store and catalog and builds the
// recommendation service. It does not build the corpus.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initComponents(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*components, error) {
	c := &components{}

	store, err := artifact.Open(ctx, artifactOptions(&cfg.Artifacts), logger.With().Str("component", "artifact").Logger())
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	c.store = store
	logger.Info().Str("backend", store.Name()).Msg("artifact store ready")

	deps := recommend.Deps{
		Logger:    logger,
		Artifacts: store,
	}

	if cfg.Database.Enabled {
		db, err := database.Open(ctx, database.Config{
			Path:      cfg.Database.Path,
			Threads:   cfg.Database.Threads,
			MaxMemory: cfg.Database.MaxMemory,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("open catalog: %w", err)
		}
		c.catalog = db
		deps.Catalog = db
		deps.Tables = recommend.CatalogTables{DB: db}
		logger.Info().Str("path", db.Path()).Msg("duckdb catalog ready")
	} else {
		logger.Info().Msg("duckdb catalog disabled (DUCKDB_ENABLED=false)")
	}

	svc, err := recommend.New(cfg.Recommend.Service(cfg.Data.Dir), deps)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create recommendation service: %w", err)
	}
	c.service = svc
	return c, nil
}
