// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package api exposes the recommendation service over HTTP.
//
// Routes (all GET):
//
//	/api/v1/search      title search
//	/api/v1/recommend   similar movies for a title
//	/api/v1/top-rated   weighted-rating chart
//	/api/v1/stats       dataset diagnostics
//	/api/v1/health      health summary, plus /live and /ready probes
//	/metrics            Prometheus exposition
//
// Every body uses the models.APIResponse envelope.
package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Recommender is the query surface of the recommendation service.
type Recommender interface {
	Search(ctx context.Context, query string) ([]recommend.SearchResult, error)
	Recommend(ctx context.Context, title string, topN int) ([]recommend.Recommendation, error)
	RecommendForQuery(ctx context.Context, query string, topN int) (recommend.QueryRecommendations, error)
	TopRated(ctx context.Context, topN int, percentile float64) ([]recommend.TopRatedMovie, error)
	Stats(ctx context.Context) (recommend.DatasetStats, error)
	Status() recommend.Status
	Config() recommend.Config
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerConfig carries the dependencies of a Handler.
type HandlerConfig struct {
	Service Recommender

	// Catalog is the optional DuckDB catalog, checked by Health.
	Catalog Pinger

	// ArtifactBackend names the artifact store for Health.
	ArtifactBackend string

	Version string
}

// Handler serves the API endpoints.
type Handler struct {
	svc             Recommender
	catalog         Pinger
	artifactBackend string
	version         string
	startTime       time.Time
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		svc:             cfg.Service,
		catalog:         cfg.Catalog,
		artifactBackend: cfg.ArtifactBackend,
		version:         version,
		startTime:       time.Now(),
	}
}

var _ Recommender = (*recommend.Service)(nil)
