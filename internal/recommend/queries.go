// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/features"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/popularity"
	"github.com/tomtom215/reelmatch/internal/similarity"
)

// Query operations, used as metric labels.
const (
	opSearch    = "search"
	opRecommend = "recommend"
	opTopRated  = "top_rated"
	opStats     = "stats"
)

// lookup consults a result cache. A nil cache always misses.
func lookup[V any](c *cache.LRU[string, []V], op, key string) ([]V, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.Get(key)
	metrics.RecordResultCache(op, ok)
	return v, ok
}

func remember[V any](c *cache.LRU[string, []V], key string, v []V) {
	if c != nil {
		c.Add(key, v)
	}
}

func outcome(n int) string {
	if n == 0 {
		return metrics.OutcomeEmpty
	}
	return metrics.OutcomeHit
}

// Search resolves free text to ranked canonical titles. No match is an
// empty result, not an error.
func (s *Service) Search(ctx context.Context, query string) ([]SearchResult, error) {
	start := time.Now()
	c, err := s.ensure(ctx)
	if err != nil {
		metrics.RecordQuery(opSearch, metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	if cached, ok := lookup(s.searches, opSearch, query); ok {
		metrics.RecordQuery(opSearch, outcome(len(cached)), time.Since(start))
		return slices.Clone(cached), nil
	}

	matches := c.resolver.Resolve(query)
	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		r := c.table.At(m.Row)
		results = append(results, SearchResult{
			Title:       m.Title,
			Score:       m.Score,
			Genres:      r.DisplayGenres,
			ReleaseDate: r.ReleaseDate,
		})
	}
	remember(s.searches, query, results)

	metrics.RecordQuery(opSearch, outcome(len(results)), time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("query", query).
		Int("matches", len(results)).
		Msg("title search")
	return slices.Clone(results), nil
}

// Recommend returns up to topN movies similar to the canonical title.
// An unknown title yields an empty result. The queried row never appears
// and repeated titles are collapsed to their best-ranked occurrence.
func (s *Service) Recommend(ctx context.Context, title string, topN int) ([]Recommendation, error) {
	start := time.Now()
	c, err := s.ensure(ctx)
	if err != nil {
		metrics.RecordQuery(opRecommend, metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	if topN <= 0 {
		topN = s.cfg.DefaultTopN
	}

	key := title + "\x00" + strconv.Itoa(topN)
	if cached, ok := lookup(s.recs, opRecommend, key); ok {
		metrics.RecordQuery(opRecommend, outcome(len(cached)), time.Since(start))
		return slices.Clone(cached), nil
	}

	recs, err := c.recommend(title, topN)
	if err != nil {
		metrics.RecordQuery(opRecommend, metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	remember(s.recs, key, recs)

	metrics.RecordQuery(opRecommend, outcome(len(recs)), time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("title", title).
		Int("top_n", topN).
		Int("results", len(recs)).
		Msg("recommend")
	return slices.Clone(recs), nil
}

func (c *corpus) recommend(title string, topN int) ([]Recommendation, error) {
	row, ok := c.table.Lookup(title)
	if !ok {
		return []Recommendation{}, nil
	}

	// Rows repeating the query title or an earlier hit are dropped, so the
	// neighbor window widens until topN distinct titles are collected or
	// the table runs out.
	k := topN
	for {
		neighbors, err := c.index.Query(row, k)
		if err != nil {
			return nil, fmt.Errorf("query similarity index: %w", err)
		}
		recs := c.distinct(title, neighbors, topN)
		if len(recs) == topN || len(neighbors) < k || k >= c.table.Len()-1 {
			return recs, nil
		}
		k = min(2*k, c.table.Len()-1)
	}
}

// distinct keeps the best-ranked row of each title, never the query title.
func (c *corpus) distinct(title string, neighbors []similarity.Neighbor, topN int) []Recommendation {
	seen := map[string]struct{}{title: {}}
	recs := make([]Recommendation, 0, min(topN, len(neighbors)))
	for _, n := range neighbors {
		if len(recs) == topN {
			break
		}
		r := c.table.At(n.Row)
		if _, dup := seen[r.Title]; dup {
			continue
		}
		seen[r.Title] = struct{}{}
		recs = append(recs, Recommendation{
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			Genres:      r.DisplayGenres,
		})
	}
	return recs
}

// RecommendForQuery resolves query to its best fuzzy match and recommends
// for that title. When nothing matches, Title is empty and the list is empty.
func (s *Service) RecommendForQuery(ctx context.Context, query string, topN int) (QueryRecommendations, error) {
	c, err := s.ensure(ctx)
	if err != nil {
		return QueryRecommendations{}, err
	}

	out := QueryRecommendations{Query: query, Recommendations: []Recommendation{}}
	best, ok := c.resolver.Best(query)
	if !ok {
		metrics.RecordQuery(opRecommend, metrics.OutcomeEmpty, 0)
		return out, nil
	}

	recs, err := s.Recommend(ctx, best.Title, topN)
	if err != nil {
		return QueryRecommendations{}, err
	}
	out.Title = best.Title
	out.Score = best.Score
	out.Recommendations = recs
	return out, nil
}

// TopRated returns the weighted-rating chart. Empty string fields are
// reported as "Unknown".
func (s *Service) TopRated(ctx context.Context, topN int, percentile float64) ([]TopRatedMovie, error) {
	start := time.Now()
	c, err := s.ensure(ctx)
	if err != nil {
		metrics.RecordQuery(opTopRated, metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	if topN <= 0 {
		topN = s.cfg.DefaultTopRated
	}

	key := strconv.Itoa(topN) + "\x00" + strconv.FormatFloat(percentile, 'g', -1, 64)
	if cached, ok := lookup(s.topRated, opTopRated, key); ok {
		metrics.RecordQuery(opTopRated, outcome(len(cached)), time.Since(start))
		return slices.Clone(cached), nil
	}

	ranked, err := popularity.TopRated(c.table, topN, percentile)
	if err != nil {
		metrics.RecordQuery(opTopRated, metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	movies := make([]TopRatedMovie, 0, len(ranked))
	for _, r := range ranked {
		movies = append(movies, TopRatedMovie{
			Title:          orUnknown(r.Title),
			VoteCount:      r.VoteCount,
			VoteAverage:    r.VoteAverage,
			WeightedRating: r.WeightedRating,
			ReleaseDate:    orUnknown(r.ReleaseDate),
		})
	}
	remember(s.topRated, key, movies)

	metrics.RecordQuery(opTopRated, outcome(len(movies)), time.Since(start))
	return slices.Clone(movies), nil
}

func orUnknown(s string) string {
	if s == "" {
		return unknownField
	}
	return s
}

// Stats returns dataset diagnostics for the served table, plus catalog
// aggregates when a catalog is attached. A failing catalog query is logged
// and omitted.
func (s *Service) Stats(ctx context.Context) (DatasetStats, error) {
	start := time.Now()
	c, err := s.ensure(ctx)
	if err != nil {
		metrics.RecordQuery(opStats, metrics.OutcomeError, time.Since(start))
		return DatasetStats{}, err
	}

	out := DatasetStats{
		Dataset: features.Diagnostics(c.table, s.cfg.TopGenres),
		Build:   c.info,
	}
	if s.catalog != nil {
		dbStart := time.Now()
		cs, err := s.catalog.Stats(ctx)
		metrics.RecordDBQuery("stats", time.Since(dbStart), err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("catalog stats unavailable")
		} else {
			out.Catalog = &cs
		}
	}

	metrics.RecordQuery(opStats, metrics.OutcomeHit, time.Since(start))
	return out, nil
}
