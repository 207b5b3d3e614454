// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PipelineLogger emits structured events for the build pipeline stages
// (table, matrix, index). Every event carries the stage name so a build can
// be followed end to end with a single filter.
type PipelineLogger struct {
	logger zerolog.Logger
}

// NewPipelineLogger tags logger with component=pipeline.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipelineLogger(logger zerolog.Logger) *PipelineLogger {
	return &PipelineLogger{logger: logger.With().Str("component", "pipeline").Logger()}
}

// WithContext returns a PipelineLogger carrying ctx's correlation and request IDs.
func (p *PipelineLogger) WithContext(ctx context.Context) *PipelineLogger {
	logCtx := p.logger.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	return &PipelineLogger{logger: logCtx.Logger()}
}

// StageStarted logs the start of stage.
func (p *PipelineLogger) StageStarted(stage string) {
	p.logger.Info().Str("stage", stage).Msg("pipeline stage started")
}

// StageFinished logs a completed stage. fields may add stage-specific
// values such as row or vocabulary counts.
func (p *PipelineLogger) StageFinished(stage string, elapsed time.Duration, fields map[string]any) {
	p.logger.Info().
		Str("stage", stage).
		Dur("elapsed", elapsed).
		Fields(fields).
		Msg("pipeline stage finished")
}

// CacheHit logs that stage reused a stored artifact.
func (p *PipelineLogger) CacheHit(stage, key, backend string) {
	p.logger.Info().
		Str("stage", stage).
		Str("artifact", key).
		Str("backend", backend).
		Msg("artifact cache hit")
}

// CacheMiss logs that stage has to rebuild.
func (p *PipelineLogger) CacheMiss(stage, key, backend string) {
	p.logger.Info().
		Str("stage", stage).
		Str("artifact", key).
		Str("backend", backend).
		Msg("artifact cache miss, rebuilding")
}

// CacheWriteFailed logs a non-fatal artifact save failure.
func (p *PipelineLogger) CacheWriteFailed(stage, key string, err error) {
	p.logger.Warn().
		Err(err).
		Str("stage", stage).
		Str("artifact", key).
		Msg("failed to persist artifact")
}

// RowsDiscarded logs rows dropped for reason. Zero counts are skipped.
func (p *PipelineLogger) RowsDiscarded(reason string, count int) {
	if count == 0 {
		return
	}
	p.logger.Info().
		Str("reason", reason).
		Int("rows", count).
		Msg("rows discarded")
}

// StageFailed logs a fatal stage error.
func (p *PipelineLogger) StageFailed(stage string, err error) {
	p.logger.Error().
		Err(err).
		Str("stage", stage).
		Msg("pipeline stage failed")
}
