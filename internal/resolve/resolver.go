// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package resolve maps free-text queries to canonical movie titles.
//
// Scoring uses WRatio, a weighted combination of edit-distance, partial
// alignment, and token-order-insensitive comparisons on a 0-100 scale.
// Resolver applies the candidate policy on top: short titles are only
// considered for short queries, matches must score strictly above the
// cutoff, duplicate titles collapse to their first row, and results are
// capped. An empty result means "no match" and is not an error.
package resolve

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Default resolver policy.
const (
	DefaultScoreCutoff   = 70
	DefaultLimit         = 10
	DefaultShortTitleLen = 3
)

// Match is a resolved title and its row in the feature table.
type Match struct {
	Title string `json:"title"`
	Row   int    `json:"row"`
	Score int    `json:"score"`
}

// Options tunes the resolver policy. Zero values select the defaults.
type Options struct {
	// ScoreCutoff is exclusive: only scores above it are kept.
	ScoreCutoff int
	// Limit caps the number of matches returned.
	Limit int
	// ShortTitleLen is the title length (in characters) at or below which
	// titles are skipped unless the query is equally short.
	ShortTitleLen int
}

func (o Options) withDefaults() Options {
	if o.ScoreCutoff <= 0 {
		o.ScoreCutoff = DefaultScoreCutoff
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.ShortTitleLen <= 0 {
		o.ShortTitleLen = DefaultShortTitleLen
	}
	return o
}

type candidate struct {
	title     string
	row       int
	processed string
	short     bool
}

// Resolver scores queries against a fixed title list.
type Resolver struct {
	opts       Options
	candidates []candidate
}

// New prepares a resolver over titles, indexed by row. Titles are processed
// once up front.
func New(titles []string, opts Options) *Resolver {
	opts = opts.withDefaults()
	seen := make(map[string]struct{}, len(titles))
	cands := make([]candidate, 0, len(titles))
	for row, title := range titles {
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		cands = append(cands, candidate{
			title:     title,
			row:       row,
			processed: FullProcess(FullProcess(title, false), true),
			short:     utf8.RuneCountInString(title) <= opts.ShortTitleLen,
		})
	}
	return &Resolver{opts: opts, candidates: cands}
}

// Len returns the number of distinct candidate titles.
func (r *Resolver) Len() int {
	return len(r.candidates)
}

// Resolve returns up to Limit matches scoring above the cutoff, best first.
// Ties keep candidate (row) order.
func (r *Resolver) Resolve(query string) []Match {
	return r.resolve(query, r.opts.Limit)
}

// ResolveN is Resolve with an explicit limit.
func (r *Resolver) ResolveN(query string, limit int) []Match {
	if limit <= 0 {
		limit = r.opts.Limit
	}
	return r.resolve(query, limit)
}

// Best returns the top-ranked match, if any.
func (r *Resolver) Best(query string) (Match, bool) {
	matches := r.resolve(query, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

func (r *Resolver) resolve(query string, limit int) []Match {
	query = strings.TrimSpace(query)
	pq := FullProcess(FullProcess(query, false), true)
	if pq == "" {
		return []Match{}
	}
	shortQuery := utf8.RuneCountInString(query) <= r.opts.ShortTitleLen

	matches := make([]Match, 0, limit)
	for _, c := range r.candidates {
		if c.short && !shortQuery {
			continue
		}
		score := wratioProcessed(pq, c.processed)
		if score > r.opts.ScoreCutoff {
			matches = append(matches, Match{Title: c.title, Row: c.row, Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
