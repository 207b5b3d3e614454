// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package similarity answers "k most similar rows" queries over a
// vectorized corpus using cosine similarity.
//
// Two realizations share the Index interface:
//
//   - NeighborIndex (ModeNeighbors, default): exhaustive brute-force cosine
//     search. Rows are L2-normalized at build time and a posting list per
//     term restricts scoring to rows sharing at least one term; every other
//     row has similarity zero.
//   - MatrixIndex (ModeMatrix): the full pairwise similarity matrix,
//     computed once. Memory is quadratic in the row count so builds are
//     refused above Options.MaxMatrixRows.
//
// Query results exclude the query row, are ordered by descending score with
// ties broken by ascending row, and hold at most k entries.
//
// # Thread Safety
//
// Built indexes are immutable. Query is safe for concurrent use.
package similarity

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// Mode selects the Index realization.
type Mode string

const (
	ModeNeighbors Mode = "neighbors"
	ModeMatrix    Mode = "matrix"
)

// DefaultMaxMatrixRows bounds ModeMatrix builds when Options leaves it unset.
const DefaultMaxMatrixRows = 20000

var (
	// ErrRowOutOfRange is returned when a query names a row the index lacks.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrMatrixTooLarge is returned when a full matrix would exceed the row limit.
	ErrMatrixTooLarge = errors.New("corpus too large for full similarity matrix")

	// ErrUnknownMode is returned for an unsupported Mode.
	ErrUnknownMode = errors.New("unknown similarity mode")
)

// Neighbor is one query result.
type Neighbor struct {
	Row   int     `json:"row"`
	Score float64 `json:"score"`
}

// Distance returns the cosine distance, 1 - Score.
func (n Neighbor) Distance() float64 {
	return 1 - n.Score
}

// Index is a built similarity structure.
type Index interface {
	Mode() Mode
	Len() int
	Query(row, k int) ([]Neighbor, error)
}

// Options configures Build.
type Options struct {
	Mode          Mode
	Workers       int
	MaxMatrixRows int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ParseMode validates a configured mode name. Empty selects ModeNeighbors.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNeighbors:
		return ModeNeighbors, nil
	case ModeMatrix:
		return ModeMatrix, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Build constructs the index selected by opts.Mode over m.
func Build(ctx context.Context, m *vectorize.Matrix, opts Options) (Index, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeMatrix:
		return BuildMatrix(ctx, m, opts)
	default:
		return BuildNeighbors(ctx, m, opts)
	}
}

// rankNeighbors sorts by descending score, then ascending row, and caps at k.
func rankNeighbors(ns []Neighbor, k int) []Neighbor {
	slices.SortFunc(ns, func(a, b Neighbor) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})
	if len(ns) > k {
		ns = ns[:k]
	}
	return ns
}

func checkQuery(row, k, n int) error {
	if row < 0 || row >= n {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrRowOutOfRange, row, n)
	}
	if k < 0 {
		return fmt.Errorf("k must be non-negative, got %d", k)
	}
	return nil
}

// chunks splits [0,n) into at most parts contiguous ranges.
func chunks(n, parts int) [][2]int {
	if n == 0 {
		return nil
	}
	parts = max(1, min(parts, n))
	size := (n + parts - 1) / parts
	out := make([][2]int, 0, parts)
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}
