// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// Initializer builds the recommendation corpus. Init runs at most once and
// returns the same outcome on every later call.
type Initializer interface {
	Init(ctx context.Context) error
}

// WarmupService initializes the recommendation service at startup so the
// first query does not pay for the build.
//
// Init is idempotent, so a restart could never change the outcome. The
// service always finishes with suture.ErrDoNotRestart.
type WarmupService struct {
	svc    Initializer
	logger zerolog.Logger
	name   string
}

// NewWarmupService creates a warmup service for svc.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmupService(svc Initializer, logger zerolog.Logger) *WarmupService {
	return &WarmupService{
		svc:    svc,
		logger: logger.With().Str("service", "warmup").Logger(),
		name:   "recommend-warmup",
	}
}

// Serve implements suture.Service.
func (s *WarmupService) Serve(ctx context.Context) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	start := time.Now()
	s.logger.Info().
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Msg("warming up recommendation service")

	if err := s.svc.Init(ctx); err != nil {
		if ctx.Err() != nil {
			s.logger.Info().Msg("warmup interrupted by shutdown")
		} else {
			// Queries report this through the service state.
			s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("warmup failed")
		}
		return suture.ErrDoNotRestart
	}

	s.logger.Info().Dur("duration", time.Since(start)).Msg("warmup complete")
	return suture.ErrDoNotRestart
}

// String implements fmt.Stringer.
func (s *WarmupService) String() string {
	return s.name
}
