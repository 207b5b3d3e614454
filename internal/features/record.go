// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"slices"

	"github.com/goccy/go-json"
)

// MovieRecord is one row of the feature table.
type MovieRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`

	// Normalized feature lists, at most three entries each.
	Genres   []string `json:"genres"`
	Cast     []string `json:"cast"`
	Keywords []string `json:"keywords"`
	Director string   `json:"director"`

	// DisplayGenres keeps the original genre names for presentation.
	DisplayGenres []string `json:"display_genres"`

	VoteCount   int64   `json:"vote_count"`
	VoteAverage float64 `json:"vote_average"`
	Adult       bool    `json:"adult"`

	// Soup is the space-joined keywords, cast, director, and genres.
	Soup string `json:"soup"`
}

// TitleIndex maps a canonical title to the first row carrying it.
type TitleIndex struct {
	rows map[string]int
}

// NewTitleIndex indexes records by title. Later duplicates are shadowed by
// the first occurrence.
func NewTitleIndex(records []MovieRecord) TitleIndex {
	rows := make(map[string]int, len(records))
	for i := range records {
		if _, ok := rows[records[i].Title]; !ok {
			rows[records[i].Title] = i
		}
	}
	return TitleIndex{rows: rows}
}

// Lookup returns the row position for title.
func (ti TitleIndex) Lookup(title string) (int, bool) {
	row, ok := ti.rows[title]
	return row, ok
}

// Len returns the number of distinct titles.
func (ti TitleIndex) Len() int {
	return len(ti.rows)
}

// Table is the immutable, ordered feature table.
type Table struct {
	records []MovieRecord
	titles  TitleIndex
}

// NewTable takes ownership of records and builds the title index.
func NewTable(records []MovieRecord) *Table {
	return &Table{
		records: records,
		titles:  NewTitleIndex(records),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// At returns the record at row i. The returned record's slices must be
// treated as read-only.
func (t *Table) At(i int) MovieRecord {
	return t.records[i]
}

// Records returns a copy of the row slice.
func (t *Table) Records() []MovieRecord {
	return slices.Clone(t.records)
}

// Lookup resolves a canonical title to its row.
func (t *Table) Lookup(title string) (int, bool) {
	return t.titles.Lookup(title)
}

// Titles returns every title in row order, duplicates included.
func (t *Table) Titles() []string {
	out := make([]string, len(t.records))
	for i := range t.records {
		out[i] = t.records[i].Title
	}
	return out
}

// Soups returns the soup corpus in row order.
func (t *Table) Soups() []string {
	out := make([]string, len(t.records))
	for i := range t.records {
		out[i] = t.records[i].Soup
	}
	return out
}

// MarshalJSON encodes the table as its ordered record list.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.records)
}

// UnmarshalJSON decodes a record list and rebuilds the title index.
func (t *Table) UnmarshalJSON(data []byte) error {
	var records []MovieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	*t = *NewTable(records)
	return nil
}
