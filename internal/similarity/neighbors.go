// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package similarity

import (
	"context"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/vectorize"
)

// NeighborIndex is a brute-force cosine nearest-neighbor structure.
type NeighborIndex struct {
	rows     int
	cols     int
	indptr   []int
	indices  []int32
	values   []float64 // L2-normalized
	postings []*roaring.Bitmap
}

// BuildNeighbors normalizes the rows of m and indexes term postings.
func BuildNeighbors(ctx context.Context, m *vectorize.Matrix, opts Options) (*NeighborIndex, error) {
	idx := &NeighborIndex{
		rows:    m.Rows(),
		cols:    m.Cols(),
		indptr:  make([]int, m.Rows()+1),
		indices: make([]int32, m.NNZ()),
		values:  make([]float64, m.NNZ()),
	}
	for i := 0; i < m.Rows(); i++ {
		cols, _ := m.Row(i)
		idx.indptr[i+1] = idx.indptr[i] + len(cols)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, span := range chunks(m.Rows(), opts.workers()) {
		g.Go(func() error {
			for i := span[0]; i < span[1]; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				cols, vals := m.Row(i)
				lo := idx.indptr[i]
				copy(idx.indices[lo:], cols)
				norm := m.Norm(i)
				for j, v := range vals {
					if norm > 0 {
						idx.values[lo+j] = v / norm
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx.postings = make([]*roaring.Bitmap, idx.cols)
	for c := range idx.postings {
		idx.postings[c] = roaring.New()
	}
	for i := 0; i < idx.rows; i++ {
		for _, c := range idx.indices[idx.indptr[i]:idx.indptr[i+1]] {
			idx.postings[c].Add(uint32(i)) //nolint:gosec // row count fits uint32
		}
	}
	for _, p := range idx.postings {
		p.RunOptimize()
	}
	return idx, nil
}

// Mode implements Index.
func (x *NeighborIndex) Mode() Mode { return ModeNeighbors }

// Len implements Index.
func (x *NeighborIndex) Len() int { return x.rows }

// Query implements Index.
func (x *NeighborIndex) Query(row, k int) ([]Neighbor, error) {
	if err := checkQuery(row, k, x.rows); err != nil {
		return nil, err
	}
	k = min(k, x.rows-1)
	if k == 0 {
		return []Neighbor{}, nil
	}

	qCols := x.indices[x.indptr[row]:x.indptr[row+1]]
	qVals := x.values[x.indptr[row]:x.indptr[row+1]]

	lists := make([]*roaring.Bitmap, len(qCols))
	for i, c := range qCols {
		lists[i] = x.postings[c]
	}
	candidates := roaring.New()
	if len(lists) > 0 {
		candidates = roaring.FastOr(lists...)
	}
	candidates.Remove(uint32(row)) //nolint:gosec // row < rows

	out := make([]Neighbor, 0, max(k, int(candidates.GetCardinality())))
	it := candidates.Iterator()
	for it.HasNext() {
		other := int(it.Next())
		score := dot(qCols, qVals,
			x.indices[x.indptr[other]:x.indptr[other+1]],
			x.values[x.indptr[other]:x.indptr[other+1]])
		out = append(out, Neighbor{Row: other, Score: clampScore(score)})
	}
	out = rankNeighbors(out, k)

	// Rows sharing no term score zero; fill in row order.
	for other := 0; len(out) < k && other < x.rows; other++ {
		if other == row || candidates.Contains(uint32(other)) { //nolint:gosec // other < rows
			continue
		}
		out = append(out, Neighbor{Row: other, Score: 0})
	}
	return out, nil
}

// dot multiplies two sparse rows with sorted column indices.
func dot(ac []int32, av []float64, bc []int32, bv []float64) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(ac) && j < len(bc) {
		switch {
		case ac[i] == bc[j]:
			sum += av[i] * bv[j]
			i++
			j++
		case ac[i] < bc[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// clampScore trims floating error so identical rows score exactly 1.
func clampScore(s float64) float64 {
	if s > 1 && s-1 < 1e-9 {
		return 1
	}
	return math.Max(s, 0)
}
