// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vectorize

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Matrix is an immutable sparse matrix in compressed sparse row layout.
// Column indices within a row are strictly increasing.
type Matrix struct {
	rows    int
	cols    int
	indptr  []int
	indices []int32
	values  []float64
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.values) }

// Row returns the column indices and values of row i. The returned slices
// alias the matrix and must not be modified.
func (m *Matrix) Row(i int) ([]int32, []float64) {
	lo, hi := m.indptr[i], m.indptr[i+1]
	return m.indices[lo:hi], m.values[lo:hi]
}

// Norm returns the Euclidean norm of row i.
func (m *Matrix) Norm(i int) float64 {
	_, vals := m.Row(i)
	var sum float64
	for _, v := range vals {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// matrixBuilder appends rows in order.
type matrixBuilder struct {
	m *Matrix
}

func newMatrixBuilder(cols, rowsHint int) *matrixBuilder {
	return &matrixBuilder{m: &Matrix{cols: cols, indptr: make([]int, 1, rowsHint+1)}}
}

// addRow appends a row; indices must be sorted ascending.
func (b *matrixBuilder) addRow(indices []int32, values []float64) {
	b.m.indices = append(b.m.indices, indices...)
	b.m.values = append(b.m.values, values...)
	b.m.indptr = append(b.m.indptr, len(b.m.values))
	b.m.rows++
}

func (b *matrixBuilder) build() *Matrix {
	return b.m
}

type matrixWire struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Indptr  []int     `json:"indptr"`
	Indices []int32   `json:"indices"`
	Values  []float64 `json:"values"`
}

// MarshalJSON encodes the matrix in its CSR arrays.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixWire{
		Rows: m.rows, Cols: m.cols,
		Indptr: m.indptr, Indices: m.indices, Values: m.values,
	})
}

// UnmarshalJSON decodes and validates CSR arrays.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var w matrixWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Rows < 0 || w.Cols < 0 {
		return fmt.Errorf("vectorize: negative matrix shape rows=%d cols=%d", w.Rows, w.Cols)
	}
	if len(w.Indptr) != w.Rows+1 || len(w.Indices) != len(w.Values) {
		return fmt.Errorf("vectorize: inconsistent matrix shape rows=%d indptr=%d", w.Rows, len(w.Indptr))
	}
	if w.Indptr[0] != 0 || w.Indptr[w.Rows] != len(w.Values) {
		return fmt.Errorf("vectorize: indptr does not span %d values", len(w.Values))
	}
	for i := 0; i < w.Rows; i++ {
		if w.Indptr[i] > w.Indptr[i+1] {
			return fmt.Errorf("vectorize: indptr decreases at row %d", i)
		}
	}
	for _, c := range w.Indices {
		if c < 0 || int(c) >= w.Cols {
			return fmt.Errorf("vectorize: column %d out of range", c)
		}
	}
	*m = Matrix{rows: w.Rows, cols: w.Cols, indptr: w.Indptr, indices: w.Indices, values: w.Values}
	return nil
}
