// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package similarity

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/goccy/go-json"
)

// snapshot is the persisted form of either index realization.
type snapshot struct {
	Mode Mode `json:"mode"`

	// NeighborIndex
	Rows     int       `json:"rows,omitempty"`
	Cols     int       `json:"cols,omitempty"`
	Indptr   []int     `json:"indptr,omitempty"`
	Indices  []int32   `json:"indices,omitempty"`
	Values   []float64 `json:"values,omitempty"`
	Postings [][]byte  `json:"postings,omitempty"`

	// MatrixIndex
	N    int       `json:"n,omitempty"`
	Sims []float32 `json:"sims,omitempty"`
}

// Encode serializes a built index.
func Encode(idx Index) ([]byte, error) {
	switch x := idx.(type) {
	case *NeighborIndex:
		postings := make([][]byte, len(x.postings))
		for i, p := range x.postings {
			b, err := p.ToBytes()
			if err != nil {
				return nil, fmt.Errorf("encode posting %d: %w", i, err)
			}
			postings[i] = b
		}
		return json.Marshal(snapshot{
			Mode: ModeNeighbors,
			Rows: x.rows, Cols: x.cols,
			Indptr: x.indptr, Indices: x.indices, Values: x.values,
			Postings: postings,
		})
	case *MatrixIndex:
		return json.Marshal(snapshot{Mode: ModeMatrix, N: x.n, Sims: x.sims})
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", ErrUnknownMode, idx)
	}
}

// Decode restores an index produced by Encode.
func Decode(data []byte) (Index, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode similarity snapshot: %w", err)
	}
	switch s.Mode {
	case ModeNeighbors:
		idx, err := decodeNeighbors(s)
		if err != nil {
			return nil, err
		}
		return idx, nil
	case ModeMatrix:
		if s.N < 0 {
			return nil, fmt.Errorf("decode similarity snapshot: negative matrix size %d", s.N)
		}
		if len(s.Sims) != s.N*s.N {
			return nil, fmt.Errorf("decode similarity snapshot: matrix holds %d cells, want %d", len(s.Sims), s.N*s.N)
		}
		return &MatrixIndex{n: s.N, sims: s.Sims}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, s.Mode)
	}
}

func decodeNeighbors(s snapshot) (*NeighborIndex, error) {
	if err := checkCSR(s); err != nil {
		return nil, fmt.Errorf("decode similarity snapshot: %w", err)
	}
	postings := make([]*roaring.Bitmap, len(s.Postings))
	for i, b := range s.Postings {
		p := roaring.New()
		if err := p.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("decode posting %d: %w", i, err)
		}
		if !p.IsEmpty() && int(p.Maximum()) >= s.Rows {
			return nil, fmt.Errorf("decode similarity snapshot: posting %d references row %d of %d", i, p.Maximum(), s.Rows)
		}
		postings[i] = p
	}
	return &NeighborIndex{
		rows: s.Rows, cols: s.Cols,
		indptr: s.Indptr, indices: s.Indices, values: s.Values,
		postings: postings,
	}, nil
}

// checkCSR verifies the row arrays of a neighbor snapshot so that Query
// can slice them without bounds failures.
func checkCSR(s snapshot) error {
	if s.Rows < 0 || s.Cols < 0 {
		return fmt.Errorf("negative shape rows=%d cols=%d", s.Rows, s.Cols)
	}
	if len(s.Indptr) != s.Rows+1 || len(s.Indices) != len(s.Values) || len(s.Postings) != s.Cols {
		return fmt.Errorf("inconsistent neighbor index shape")
	}
	if s.Indptr[0] != 0 || s.Indptr[s.Rows] != len(s.Values) {
		return fmt.Errorf("indptr does not span %d values", len(s.Values))
	}
	for i := 0; i < s.Rows; i++ {
		if s.Indptr[i] > s.Indptr[i+1] {
			return fmt.Errorf("indptr decreases at row %d", i)
		}
	}
	for _, c := range s.Indices {
		if c < 0 || int(c) >= s.Cols {
			return fmt.Errorf("column %d out of range [0,%d)", c, s.Cols)
		}
	}
	return nil
}
