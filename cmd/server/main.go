// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Err(err).Msg("ReelMatch stopped with error")
		os.Exit(1)
	}
}

func run() error {
	// Configuration first, it carries the logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("data_dir", cfg.Data.Dir).
		Str("vectorizer", cfg.Recommend.Vectorizer).
		Str("similarity_mode", cfg.Recommend.SimilarityMode).
		Str("artifact_backend", cfg.Artifacts.Backend).
		Bool("duckdb_enabled", cfg.Database.Enabled).
		Msg("Starting ReelMatch")

	logging.Debug().
		Int("workers", cfg.Recommend.Workers).
		Int("score_cutoff", cfg.Recommend.ScoreCutoff).
		Bool("force_rebuild", cfg.Recommend.ForceRebuild).
		Int64("artifact_io_limit", cfg.Artifacts.IOLimitBytesPerSec).
		Msg("Pipeline settings")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := initComponents(ctx, cfg, logging.Logger())
	if err != nil {
		return err
	}
	defer comps.Close()

	handlerCfg := api.HandlerConfig{
		Service:         comps.service,
		ArtifactBackend: comps.store.Name(),
		Version:         version,
	}
	if comps.catalog != nil {
		handlerCfg.Catalog = comps.catalog
	}
	handler := api.NewHandler(handlerCfg)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	chiMw := api.NewChiMiddleware(mwCfg)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, chiMw).Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		return err
	}

	if cfg.Recommend.WarmupOnStart {
		tree.AddDataService(services.NewWarmupService(comps.service, logging.Component("warmup")))
	} else {
		logging.Info().Msg("Warmup disabled, the first query builds the corpus")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("ReelMatch stopped gracefully")
	return nil
}
