// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package popularity ranks movies by IMDb-style weighted rating:
//
//	WR = v/(v+m)*R + m/(v+m)*C
//
// where v is a movie's vote count, R its vote average, C the mean vote
// average over the whole table, and m the vote-count quantile at the
// requested percentile. Only movies with v >= m qualify.
package popularity

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/tomtom215/reelmatch/internal/features"
)

// Defaults for TopRated.
const (
	DefaultTopN       = 100
	DefaultPercentile = 0.90
)

// ErrInvalidPercentile is returned for a percentile outside [0, 1].
var ErrInvalidPercentile = errors.New("percentile must be within [0, 1]")

// Ranked is a qualified movie and its weighted rating.
type Ranked struct {
	Row            int     `json:"row"`
	Title          string  `json:"title"`
	ReleaseDate    string  `json:"release_date"`
	VoteCount      int64   `json:"vote_count"`
	VoteAverage    float64 `json:"vote_average"`
	WeightedRating float64 `json:"weighted_rating"`
}

// Thresholds are the corpus-level constants of a ranking.
type Thresholds struct {
	MeanVote float64 `json:"mean_vote"` // C
	MinVotes float64 `json:"min_votes"` // m
}

// ComputeThresholds derives C and m over every row of t.
func ComputeThresholds(t *features.Table, percentile float64) (Thresholds, error) {
	if math.IsNaN(percentile) || percentile < 0 || percentile > 1 {
		return Thresholds{}, fmt.Errorf("%w: %v", ErrInvalidPercentile, percentile)
	}
	n := t.Len()
	if n == 0 {
		return Thresholds{}, nil
	}
	counts := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		r := t.At(i)
		sum += r.VoteAverage
		counts[i] = float64(r.VoteCount)
	}
	return Thresholds{
		MeanVote: sum / float64(n),
		MinVotes: Quantile(counts, percentile),
	}, nil
}

// Quantile returns the p-quantile of values using linear interpolation
// between closest ranks. values is sorted in place.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	slices.Sort(values)
	h := float64(len(values)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(values)-1 {
		return values[len(values)-1]
	}
	return values[lo] + (h-float64(lo))*(values[lo+1]-values[lo])
}

// WeightedRating applies the weighted rating formula. A movie with no votes
// against a zero threshold scores the prior mean.
func WeightedRating(votes, average float64, th Thresholds) float64 {
	denom := votes + th.MinVotes
	if denom == 0 {
		return th.MeanVote
	}
	return votes/denom*average + th.MinVotes/denom*th.MeanVote
}

// TopRated returns up to topN qualified movies by descending weighted
// rating; equal ratings keep table order. An empty table, a non-positive
// topN, or an empty qualified set yields an empty result.
func TopRated(t *features.Table, topN int, percentile float64) ([]Ranked, error) {
	th, err := ComputeThresholds(t, percentile)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 || topN <= 0 {
		return []Ranked{}, nil
	}

	qualified := make([]Ranked, 0)
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		v := float64(r.VoteCount)
		if v < th.MinVotes {
			continue
		}
		qualified = append(qualified, Ranked{
			Row:            i,
			Title:          r.Title,
			ReleaseDate:    r.ReleaseDate,
			VoteCount:      r.VoteCount,
			VoteAverage:    r.VoteAverage,
			WeightedRating: WeightedRating(v, r.VoteAverage, th),
		})
	}
	slices.SortStableFunc(qualified, func(a, b Ranked) int {
		return cmp.Compare(b.WeightedRating, a.WeightedRating)
	})
	if len(qualified) > topN {
		qualified = qualified[:topN]
	}
	return qualified, nil
}
