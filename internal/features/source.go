// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Raw dataset file names inside the data directory.
const (
	MetadataFile = "movies_metadata.csv"
	CreditsFile  = "credits.csv"
	KeywordsFile = "keywords.csv"
)

// Source names used in errors and reports.
const (
	sourceMetadata = "movies_metadata"
	sourceCredits  = "credits"
	sourceKeywords = "keywords"
)

// Sources locates the three raw CSV datasets.
type Sources struct {
	Metadata string
	Credits  string
	Keywords string
}

// SourcesFromDir returns the conventional file layout under dir.
func SourcesFromDir(dir string) Sources {
	return Sources{
		Metadata: filepath.Join(dir, MetadataFile),
		Credits:  filepath.Join(dir, CreditsFile),
		Keywords: filepath.Join(dir, KeywordsFile),
	}
}

// Check reports ErrDataUnavailable for the first missing source.
func (s Sources) Check() error {
	for _, p := range []string{s.Metadata, s.Credits, s.Keywords} {
		if p == "" {
			return fmt.Errorf("%w: empty path", ErrDataUnavailable)
		}
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrDataUnavailable, p)
			}
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrDataUnavailable, p)
		}
	}
	return nil
}

// Readers holds already-opened raw sources.
type Readers struct {
	Metadata io.Reader
	Credits  io.Reader
	Keywords io.Reader
}

// csvTable is a fully read CSV source addressed by header name.
type csvTable struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readCSV(r io.Reader, name string, required ...string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MergeError{Source: name, Column: required[0], Err: ErrMissingColumn}
		}
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := columns[col]; !dup {
			columns[col] = i
		}
	}
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, &MergeError{Source: name, Column: col, Err: ErrMissingColumn}
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &csvTable{name: name, columns: columns, rows: rows}, nil
}

// get returns the named field of row, or "" for short rows.
func (t *csvTable) get(row []string, col string) string {
	idx := t.columns[col]
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
