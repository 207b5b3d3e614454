// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/artifact"
	"github.com/tomtom215/reelmatch/internal/features"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/similarity"
	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// Pipeline stages.
const (
	stageTable    = "table"
	stageMatrix   = "matrix"
	stageIndex    = "index"
	stageResolver = "resolver"
)

// buildErrorClasses bounds the error_type label of the build error counter.
var buildErrorClasses = map[error]string{
	features.ErrDataUnavailable:  "data_unavailable",
	features.ErrMissingColumn:    "merge",
	features.ErrInvalidID:        "merge",
	vectorize.ErrEmptyCorpus:     "empty_corpus",
	artifact.ErrCorrupt:          "corrupt_artifact",
	similarity.ErrMatrixTooLarge: "matrix_too_large",
}

// matrixArtifact is the stored document-term matrix.
type matrixArtifact struct {
	Vectorizer string            `json:"vectorizer"`
	Matrix     *vectorize.Matrix `json:"matrix"`
}

func (s *Service) stageError(pipe *logging.PipelineLogger, stage string, err error) error {
	pipe.StageFailed(stage, err)
	metrics.RecordBuildError(stage, err, buildErrorClasses)
	return fmt.Errorf("%s stage: %w", stage, err)
}

// loadTable returns the feature table. A stored table is used whenever one
// exists; otherwise the raw sources are merged and the result stored.
func (s *Service) loadTable(ctx context.Context, pipe *logging.PipelineLogger) (*features.Table, *features.BuildReport, bool, error) {
	start := time.Now()
	pipe.StageStarted(stageTable)

	if !s.cfg.ForceRebuild {
		t, found, err := s.tables.Load(ctx)
		if err != nil {
			return nil, nil, false, err
		}
		metrics.RecordArtifactLookup(keyTable, s.tables.Name(), found)
		if found {
			pipe.CacheHit(stageTable, keyTable, s.tables.Name())
			s.finishStage(pipe, stageTable, true, start, map[string]any{"rows": t.Len()})
			return t, nil, true, nil
		}
		pipe.CacheMiss(stageTable, keyTable, s.tables.Name())
	}

	t, report, err := features.NewBuilder(s.logger).Build(ctx, s.sources)
	if err != nil {
		return nil, nil, false, err
	}
	pipe.RowsDiscarded("duplicate_id", report.DuplicateIDs)
	pipe.RowsDiscarded("adult_invalid", report.AdultDiscarded)
	metrics.RowsDiscarded.WithLabelValues("duplicate_id").Add(float64(report.DuplicateIDs))
	metrics.RowsDiscarded.WithLabelValues("adult_invalid").Add(float64(report.AdultDiscarded))

	if err := s.tables.Save(ctx, t); err != nil {
		pipe.CacheWriteFailed(stageTable, keyTable, err)
	}
	s.finishStage(pipe, stageTable, false, start, map[string]any{
		"rows":             t.Len(),
		"missing_credits":  report.MissingCredits,
		"missing_keywords": report.MissingKeywords,
	})
	return t, &report, false, nil
}

// loadMatrix returns the vector space over t. Stored matrices are only
// reused when the table itself came from storage.
func (s *Service) loadMatrix(ctx context.Context, pipe *logging.PipelineLogger, t *features.Table, tableCached bool) (*vectorize.Matrix, *vectorize.Vocabulary, bool, error) {
	start := time.Now()
	pipe.StageStarted(stageMatrix)
	backend := s.artifacts.Name()

	if tableCached && !s.cfg.ForceRebuild {
		m, vocab, found, err := s.loadStoredMatrix(ctx, pipe, t)
		if err != nil {
			return nil, nil, false, err
		}
		metrics.RecordArtifactLookup(keyMatrix, backend, found)
		if found {
			pipe.CacheHit(stageMatrix, keyMatrix, backend)
			s.finishStage(pipe, stageMatrix, true, start, map[string]any{
				"vocabulary": vocab.Len(),
				"non_zero":   m.NNZ(),
			})
			return m, vocab, true, nil
		}
		pipe.CacheMiss(stageMatrix, keyMatrix, backend)
	}

	vec, err := vectorize.New(s.cfg.Vectorizer)
	if err != nil {
		return nil, nil, false, err
	}
	m, vocab, err := vec.FitTransform(t.Soups())
	if err != nil {
		return nil, nil, false, err
	}

	if err := artifact.Save(ctx, s.artifacts, keyMatrix, matrixArtifact{Vectorizer: vec.Name(), Matrix: m}); err != nil {
		pipe.CacheWriteFailed(stageMatrix, keyMatrix, err)
	}
	if err := artifact.Save(ctx, s.artifacts, keyVocabulary, vocab); err != nil {
		pipe.CacheWriteFailed(stageMatrix, keyVocabulary, err)
	}
	s.finishStage(pipe, stageMatrix, false, start, map[string]any{
		"vocabulary": vocab.Len(),
		"non_zero":   m.NNZ(),
	})
	return m, vocab, false, nil
}

// loadStoredMatrix returns found=false for an absent matrix or one fitted
// by a different vectorizer. A matrix that does not match the table shape
// is corrupt.
func (s *Service) loadStoredMatrix(ctx context.Context, pipe *logging.PipelineLogger, t *features.Table) (*vectorize.Matrix, *vectorize.Vocabulary, bool, error) {
	var stored matrixArtifact
	found, err := artifact.Load(ctx, s.artifacts, keyMatrix, &stored)
	if err != nil || !found {
		return nil, nil, false, err
	}
	want, _ := vectorize.New(s.cfg.Vectorizer)
	if stored.Vectorizer != want.Name() {
		pipe.CacheMiss(stageMatrix, keyMatrix+" ("+stored.Vectorizer+")", s.artifacts.Name())
		return nil, nil, false, nil
	}
	if stored.Matrix == nil || stored.Matrix.Rows() != t.Len() {
		return nil, nil, false, fmt.Errorf("%w: %s does not match a %d-row table", artifact.ErrCorrupt, keyMatrix, t.Len())
	}

	var vocab vectorize.Vocabulary
	found, err = artifact.Load(ctx, s.artifacts, keyVocabulary, &vocab)
	if err != nil {
		return nil, nil, false, err
	}
	if !found {
		return nil, nil, false, nil
	}
	if vocab.Len() != stored.Matrix.Cols() {
		return nil, nil, false, fmt.Errorf("%w: %s holds %d terms, matrix has %d columns",
			artifact.ErrCorrupt, keyVocabulary, vocab.Len(), stored.Matrix.Cols())
	}
	return stored.Matrix, &vocab, true, nil
}

// loadIndex returns the similarity index over m. Stored indexes are only
// reused when the matrix came from storage.
func (s *Service) loadIndex(ctx context.Context, pipe *logging.PipelineLogger, m *vectorize.Matrix, matrixCached bool) (similarity.Index, bool, error) {
	start := time.Now()
	pipe.StageStarted(stageIndex)
	key := keyIndex + string(s.mode)
	backend := s.artifacts.Name()

	if matrixCached && !s.cfg.ForceRebuild {
		idx, found, err := s.loadStoredIndex(ctx, key, m)
		if err != nil {
			return nil, false, err
		}
		metrics.RecordArtifactLookup(key, backend, found)
		if found {
			pipe.CacheHit(stageIndex, key, backend)
			s.finishStage(pipe, stageIndex, true, start, map[string]any{"rows": idx.Len()})
			return idx, true, nil
		}
		pipe.CacheMiss(stageIndex, key, backend)
	}

	idx, err := similarity.Build(ctx, m, similarity.Options{
		Mode:          s.mode,
		Workers:       s.cfg.Workers,
		MaxMatrixRows: s.cfg.MaxMatrixRows,
	})
	if err != nil {
		return nil, false, err
	}

	snap, err := similarity.Encode(idx)
	if err == nil {
		err = s.artifacts.Put(ctx, key, artifact.Compress(snap))
	}
	if err != nil {
		pipe.CacheWriteFailed(stageIndex, key, err)
	}
	s.finishStage(pipe, stageIndex, false, start, map[string]any{"rows": idx.Len()})
	return idx, false, nil
}

func (s *Service) loadStoredIndex(ctx context.Context, key string, m *vectorize.Matrix) (similarity.Index, bool, error) {
	data, err := s.artifacts.Get(ctx, key)
	if errors.Is(err, artifact.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load artifact %s: %w", key, err)
	}
	raw, err := artifact.Decompress(data)
	if err != nil {
		return nil, true, fmt.Errorf("decode artifact %s: %w", key, err)
	}
	idx, err := similarity.Decode(raw)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", artifact.ErrCorrupt, key, err)
	}
	if idx.Mode() != s.mode || idx.Len() != m.Rows() {
		return nil, true, fmt.Errorf("%w: %s is a %d-row %s index, want %d-row %s",
			artifact.ErrCorrupt, key, idx.Len(), idx.Mode(), m.Rows(), s.mode)
	}
	return idx, true, nil
}

func (s *Service) finishStage(pipe *logging.PipelineLogger, stage string, cached bool, start time.Time, fields map[string]any) {
	elapsed := time.Since(start)
	fields["source"] = string(sourceOf(cached))
	pipe.StageFinished(stage, elapsed, fields)
	metrics.RecordStage(stage, cached, elapsed)
}
