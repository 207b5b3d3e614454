// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"cmp"
	"slices"
	"time"
)

const releaseDateLayout = "2006-01-02"

// GenreCount is a genre and the number of movies listing it.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// VoteSummary describes the vote_average distribution.
type VoteSummary struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// DatasetStats is a health summary of a built table.
type DatasetStats struct {
	Rows                int          `json:"rows"`
	UniqueTitles        int          `json:"unique_titles"`
	AdultRows           int          `json:"adult_rows"`
	MissingDirector     int          `json:"missing_director"`
	MissingCast         int          `json:"missing_cast"`
	MissingKeywords     int          `json:"missing_keywords"`
	MissingGenres       int          `json:"missing_genres"`
	TopGenres           []GenreCount `json:"top_genres"`
	VoteAverage         VoteSummary  `json:"vote_average"`
	OutOfBoundsVotes    int          `json:"out_of_bounds_votes"`
	InvalidReleaseDates int          `json:"invalid_release_dates"`
}

// Diagnostics computes DatasetStats for t. topGenres bounds the genre list.
func Diagnostics(t *Table, topGenres int) DatasetStats {
	stats := DatasetStats{Rows: t.Len(), UniqueTitles: t.titles.Len()}
	if t.Len() == 0 {
		return stats
	}

	genres := map[string]int{}
	var sum float64
	stats.VoteAverage.Min = t.records[0].VoteAverage
	stats.VoteAverage.Max = t.records[0].VoteAverage

	for i := range t.records {
		r := &t.records[i]
		if r.Adult {
			stats.AdultRows++
		}
		if r.Director == "" {
			stats.MissingDirector++
		}
		if len(r.Cast) == 0 {
			stats.MissingCast++
		}
		if len(r.Keywords) == 0 {
			stats.MissingKeywords++
		}
		if len(r.DisplayGenres) == 0 {
			stats.MissingGenres++
		}
		for _, g := range r.DisplayGenres {
			genres[g]++
		}

		sum += r.VoteAverage
		stats.VoteAverage.Min = min(stats.VoteAverage.Min, r.VoteAverage)
		stats.VoteAverage.Max = max(stats.VoteAverage.Max, r.VoteAverage)
		if r.VoteAverage < 0 || r.VoteAverage > 10 {
			stats.OutOfBoundsVotes++
		}
		if _, err := time.Parse(releaseDateLayout, r.ReleaseDate); err != nil {
			stats.InvalidReleaseDates++
		}
	}
	stats.VoteAverage.Mean = sum / float64(t.Len())

	counts := make([]GenreCount, 0, len(genres))
	for g, n := range genres {
		counts = append(counts, GenreCount{Genre: g, Count: n})
	}
	slices.SortFunc(counts, func(a, b GenreCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Genre, b.Genre)
	})
	if topGenres > 0 && len(counts) > topGenres {
		counts = counts[:topGenres]
	}
	stats.TopGenres = counts
	return stats
}
