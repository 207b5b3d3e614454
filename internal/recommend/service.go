// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend owns the built recommendation structures and answers
// queries against them.
//
// A Service is constructed explicitly and initialized exactly once: the
// first Init (or the first query) runs the build pipeline, concurrent
// callers wait for it, and a failed build is returned to every caller
// without retry. After initialization everything the service holds is
// immutable and shared by concurrent queries without locking.
package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/artifact"
	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/features"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/resolve"
	"github.com/tomtom215/reelmatch/internal/similarity"
	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// Deps are the collaborators of a Service. Zero values are replaced with
// working defaults by New.
type Deps struct {
	Logger zerolog.Logger

	// Artifacts stores the matrix, vocabulary and index. Nil disables
	// artifact reuse.
	Artifacts artifact.Store

	// Tables stores the merged feature table. Nil stores it in Artifacts.
	Tables TableCache

	// Catalog, when set, adds SQL-side aggregates to Stats.
	Catalog *database.DB

	// Sources overrides the raw file locations derived from Config.DataDir.
	Sources *features.Sources
}

// corpus is everything built by Init.
type corpus struct {
	table    *features.Table
	matrix   *vectorize.Matrix
	vocab    *vectorize.Vocabulary
	index    similarity.Index
	resolver *resolve.Resolver
	info     BuildInfo
}

// Service answers search, recommendation and top-rated queries.
type Service struct {
	cfg       Config
	logger    zerolog.Logger
	pipeline  *logging.PipelineLogger
	artifacts artifact.Store
	tables    TableCache
	catalog   *database.DB
	sources   features.Sources
	mode      similarity.Mode

	once    sync.Once
	corpus  *corpus
	initErr error

	statusMu sync.RWMutex
	status   Status

	searches *cache.LRU[string, []SearchResult]
	recs     *cache.LRU[string, []Recommendation]
	topRated *cache.LRU[string, []TopRatedMovie]
}

// New validates cfg and wires a Service. It performs no I/O.
//
//nolint:gocritic // hugeParam: deps passed by value, logger inside is chained
func New(cfg Config, deps Deps) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	mode, _ := similarity.ParseMode(cfg.SimilarityMode)

	logger := deps.Logger.With().Str("component", "recommend").Logger()
	s := &Service{
		cfg:       cfg,
		logger:    logger,
		pipeline:  logging.NewPipelineLogger(deps.Logger),
		artifacts: deps.Artifacts,
		tables:    deps.Tables,
		catalog:   deps.Catalog,
		mode:      mode,
		status:    Status{State: StatePending},
	}
	if s.artifacts == nil {
		s.artifacts = artifact.NopStore{}
	}
	if s.tables == nil {
		s.tables = ArtifactTables{Store: s.artifacts}
	}
	if deps.Sources != nil {
		s.sources = *deps.Sources
	} else {
		s.sources = features.SourcesFromDir(cfg.DataDir)
	}
	if cfg.ResultCacheSize > 0 {
		s.searches = cache.NewLRU[string, []SearchResult](cfg.ResultCacheSize, cfg.ResultCacheTTL)
		s.recs = cache.NewLRU[string, []Recommendation](cfg.ResultCacheSize, cfg.ResultCacheTTL)
		s.topRated = cache.NewLRU[string, []TopRatedMovie](cfg.ResultCacheSize, cfg.ResultCacheTTL)
	}
	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Init builds or loads every structure. It runs at most once; later calls
// return the first outcome.
func (s *Service) Init(ctx context.Context) error {
	s.once.Do(func() {
		s.setStatus(Status{State: StateInitializing})
		metrics.SetReady(false)

		c, err := s.build(ctx)
		if err != nil {
			s.initErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
			s.setStatus(Status{State: StateFailed, Error: err.Error()})
			s.logger.Error().Err(err).Msg("recommendation service initialization failed")
			return
		}

		s.corpus = c
		info := c.info
		s.setStatus(Status{State: StateReady, Build: &info})
		metrics.SetReady(true)
		metrics.SetCorpus(info.Rows, info.Vocabulary)
		s.logger.Info().
			Int("rows", info.Rows).
			Int("vocabulary", info.Vocabulary).
			Str("mode", info.SimilarityMode).
			Dur("duration", info.Duration).
			Msg("recommendation service ready")
	})
	return s.initErr
}

// Status reports the lifecycle state without triggering initialization.
func (s *Service) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Service) setStatus(st Status) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status = st
}

// ensure initializes on behalf of a query. The request's cancellation is
// detached so an abandoned request cannot poison the stored outcome.
func (s *Service) ensure(ctx context.Context) (*corpus, error) {
	if err := s.Init(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	return s.corpus, nil
}

func (s *Service) build(ctx context.Context) (*corpus, error) {
	start := time.Now()
	pipe := s.pipeline.WithContext(ctx)
	info := BuildInfo{
		Vectorizer:     s.cfg.Vectorizer,
		SimilarityMode: string(s.mode),
		Stages:         map[string]StageSource{},
	}
	if info.Vectorizer == "" {
		info.Vectorizer = vectorize.KindCount
	}

	table, report, tableCached, err := s.loadTable(ctx, pipe)
	if err != nil {
		return nil, s.stageError(pipe, stageTable, err)
	}
	info.Stages[stageTable] = sourceOf(tableCached)
	info.Report = report

	matrix, vocab, matrixCached, err := s.loadMatrix(ctx, pipe, table, tableCached)
	if err != nil {
		return nil, s.stageError(pipe, stageMatrix, err)
	}
	info.Stages[stageMatrix] = sourceOf(matrixCached)

	index, indexCached, err := s.loadIndex(ctx, pipe, matrix, matrixCached)
	if err != nil {
		return nil, s.stageError(pipe, stageIndex, err)
	}
	info.Stages[stageIndex] = sourceOf(indexCached)

	resolverStart := time.Now()
	pipe.StageStarted(stageResolver)
	resolver := resolve.New(table.Titles(), resolve.Options{
		ScoreCutoff: s.cfg.ScoreCutoff,
		Limit:       s.cfg.SearchLimit,
	})
	pipe.StageFinished(stageResolver, time.Since(resolverStart), map[string]any{"titles": resolver.Len()})
	metrics.RecordStage(stageResolver, false, time.Since(resolverStart))

	info.Rows = table.Len()
	info.Vocabulary = vocab.Len()
	info.NonZero = matrix.NNZ()
	info.BuiltAt = time.Now().UTC()
	info.Duration = time.Since(start)

	return &corpus{
		table:    table,
		matrix:   matrix,
		vocab:    vocab,
		index:    index,
		resolver: resolver,
		info:     info,
	}, nil
}

func sourceOf(cached bool) StageSource {
	if cached {
		return SourceCache
	}
	return SourceBuild
}
