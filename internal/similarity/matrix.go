// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package similarity

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// MatrixIndex holds the full pairwise cosine similarity matrix.
type MatrixIndex struct {
	n    int
	sims []float32 // row-major n*n
}

// BuildMatrix computes every pairwise cosine similarity of m's rows.
func BuildMatrix(ctx context.Context, m *vectorize.Matrix, opts Options) (*MatrixIndex, error) {
	limit := opts.MaxMatrixRows
	if limit <= 0 {
		limit = DefaultMaxMatrixRows
	}
	n := m.Rows()
	if n > limit {
		return nil, fmt.Errorf("%w: %d rows exceeds limit %d", ErrMatrixTooLarge, n, limit)
	}

	norms := make([]float64, n)
	for i := range norms {
		norms[i] = m.Norm(i)
	}

	idx := &MatrixIndex{n: n, sims: make([]float32, n*n)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, span := range chunks(n, opts.workers()) {
		g.Go(func() error {
			dense := make([]float64, m.Cols())
			for i := span[0]; i < span[1]; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if norms[i] == 0 {
					continue
				}
				cols, vals := m.Row(i)
				for k, c := range cols {
					dense[c] = vals[k]
				}
				out := idx.sims[i*n : (i+1)*n]
				for j := 0; j < n; j++ {
					if norms[j] == 0 {
						continue
					}
					jc, jv := m.Row(j)
					var sum float64
					for k, c := range jc {
						sum += dense[c] * jv[k]
					}
					out[j] = float32(clampScore(sum / (norms[i] * norms[j])))
				}
				for _, c := range cols {
					dense[c] = 0
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Mode implements Index.
func (x *MatrixIndex) Mode() Mode { return ModeMatrix }

// Len implements Index.
func (x *MatrixIndex) Len() int { return x.n }

// Query implements Index.
func (x *MatrixIndex) Query(row, k int) ([]Neighbor, error) {
	if err := checkQuery(row, k, x.n); err != nil {
		return nil, err
	}
	k = min(k, x.n-1)
	if k == 0 {
		return []Neighbor{}, nil
	}
	out := make([]Neighbor, 0, x.n-1)
	for j, s := range x.sims[row*x.n : (row+1)*x.n] {
		if j == row {
			continue
		}
		out = append(out, Neighbor{Row: j, Score: float64(s)})
	}
	return rankNeighbors(out, k), nil
}
