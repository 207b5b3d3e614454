// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Canonical adult flag encodings. Rows carrying anything else are dropped.
const (
	adultTrue  = "True"
	adultFalse = "False"
)

// Column names in the raw sources.
const (
	colID          = "id"
	colTitle       = "title"
	colAdult       = "adult"
	colGenres      = "genres"
	colReleaseDate = "release_date"
	colVoteCount   = "vote_count"
	colVoteAverage = "vote_average"
	colCast        = "cast"
	colCrew        = "crew"
	colKeywords    = "keywords"
)

// BuildReport summarizes what the builder kept and discarded.
type BuildReport struct {
	MetadataRows    int            `json:"metadata_rows"`
	DuplicateIDs    int            `json:"duplicate_ids"`
	AdultDiscarded  int            `json:"adult_discarded"`
	MissingCredits  int            `json:"missing_credits"`
	MissingKeywords int            `json:"missing_keywords"`
	ParseFailures   map[string]int `json:"parse_failures"`
	Rows            int            `json:"rows"`
}

// Builder runs the feature pipeline.
type Builder struct {
	logger zerolog.Logger
}

// NewBuilder creates a builder that logs under the features component.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{logger: logger.With().Str("component", "features").Logger()}
}

// Build opens the raw sources and builds the table. Any missing source
// fails with ErrDataUnavailable.
func (b *Builder) Build(ctx context.Context, src Sources) (*Table, BuildReport, error) {
	if err := src.Check(); err != nil {
		return nil, BuildReport{}, err
	}

	var files []*os.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	open := func(path string) (*os.File, error) {
		f, err := os.Open(path) //nolint:gosec // paths come from operator config
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		files = append(files, f)
		return f, nil
	}

	meta, err := open(src.Metadata)
	if err != nil {
		return nil, BuildReport{}, err
	}
	credits, err := open(src.Credits)
	if err != nil {
		return nil, BuildReport{}, err
	}
	keywords, err := open(src.Keywords)
	if err != nil {
		return nil, BuildReport{}, err
	}

	return b.BuildFromReaders(ctx, Readers{Metadata: meta, Credits: credits, Keywords: keywords})
}

// BuildFromReaders builds the table from already-opened sources.
func (b *Builder) BuildFromReaders(ctx context.Context, r Readers) (*Table, BuildReport, error) {
	report := BuildReport{ParseFailures: map[string]int{}}

	if r.Metadata == nil || r.Credits == nil || r.Keywords == nil {
		return nil, report, fmt.Errorf("%w: nil reader", ErrDataUnavailable)
	}

	meta, err := readCSV(r.Metadata, sourceMetadata,
		colID, colTitle, colAdult, colGenres, colReleaseDate, colVoteCount, colVoteAverage)
	if err != nil {
		return nil, report, err
	}
	credits, err := readCSV(r.Credits, sourceCredits, colCast, colCrew, colID)
	if err != nil {
		return nil, report, err
	}
	keywords, err := readCSV(r.Keywords, sourceKeywords, colID, colKeywords)
	if err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	report.MetadataRows = len(meta.rows)
	kept := b.filterMetadata(meta, &report)

	creditRows, err := indexByID(credits)
	if err != nil {
		return nil, report, err
	}
	keywordRows, err := indexByID(keywords)
	if err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	records := make([]MovieRecord, 0, len(kept))
	for _, k := range kept {
		row := meta.rows[k.index]
		id, err := parseID(meta.get(row, colID))
		if err != nil {
			return nil, report, &MergeError{
				Source: sourceMetadata, Column: colID, Row: k.index + 1,
				Value: meta.get(row, colID), Err: err,
			}
		}

		var castRaw, crewRaw, keywordsRaw string
		if ci, ok := creditRows[id]; ok {
			castRaw = credits.get(credits.rows[ci], colCast)
			crewRaw = credits.get(credits.rows[ci], colCrew)
		} else {
			report.MissingCredits++
		}
		if ki, ok := keywordRows[id]; ok {
			keywordsRaw = keywords.get(keywords.rows[ki], colKeywords)
		} else {
			report.MissingKeywords++
		}

		genreEntries := b.parseColumn(&report, colGenres, meta.get(row, colGenres))
		castEntries := b.parseColumn(&report, colCast, castRaw)
		crewEntries := b.parseColumn(&report, colCrew, crewRaw)
		keywordEntries := b.parseColumn(&report, colKeywords, keywordsRaw)

		displayGenres := names(genreEntries)
		rec := MovieRecord{
			ID:            id,
			Title:         meta.get(row, colTitle),
			ReleaseDate:   meta.get(row, colReleaseDate),
			Genres:        normalizeAll(displayGenres),
			DisplayGenres: displayGenres,
			Cast:          normalizeAll(names(castEntries)),
			Keywords:      normalizeAll(names(keywordEntries)),
			Director:      normalize(director(crewEntries)),
			VoteCount:     parseVoteCount(meta.get(row, colVoteCount)),
			VoteAverage:   parseVoteAverage(meta.get(row, colVoteAverage)),
			Adult:         k.adult,
		}
		rec.Soup = soup(rec.Keywords, rec.Cast, rec.Director, rec.Genres)
		records = append(records, rec)
	}
	report.Rows = len(records)

	b.logger.Info().
		Int("metadata_rows", report.MetadataRows).
		Int("duplicate_ids", report.DuplicateIDs).
		Int("adult_discarded", report.AdultDiscarded).
		Int("missing_credits", report.MissingCredits).
		Int("missing_keywords", report.MissingKeywords).
		Interface("parse_failures", report.ParseFailures).
		Int("rows", report.Rows).
		Msg("feature table built")

	return NewTable(records), report, nil
}

type keptRow struct {
	index int
	adult bool
}

// filterMetadata applies raw-id deduplication and the adult flag filter.
func (b *Builder) filterMetadata(meta *csvTable, report *BuildReport) []keptRow {
	seen := make(map[string]struct{}, len(meta.rows))
	kept := make([]keptRow, 0, len(meta.rows))
	for i, row := range meta.rows {
		rawID := meta.get(row, colID)
		if _, dup := seen[rawID]; dup {
			report.DuplicateIDs++
			continue
		}
		seen[rawID] = struct{}{}

		switch meta.get(row, colAdult) {
		case adultTrue:
			kept = append(kept, keptRow{index: i, adult: true})
		case adultFalse:
			kept = append(kept, keptRow{index: i, adult: false})
		default:
			report.AdultDiscarded++
		}
	}
	if report.AdultDiscarded > 0 {
		b.logger.Info().
			Int("discarded", report.AdultDiscarded).
			Msg("dropped rows with non-canonical adult flag")
	}
	return kept
}

// indexByID maps each integer id to its first row in t.
func indexByID(t *csvTable) (map[int64]int, error) {
	out := make(map[int64]int, len(t.rows))
	for i, row := range t.rows {
		raw := t.get(row, colID)
		id, err := parseID(raw)
		if err != nil {
			return nil, &MergeError{Source: t.name, Column: colID, Row: i + 1, Value: raw, Err: err}
		}
		if _, ok := out[id]; !ok {
			out[id] = i
		}
	}
	return out, nil
}

func (b *Builder) parseColumn(report *BuildReport, column, raw string) []map[string]any {
	entries, ok := parseEntries(raw)
	if !ok {
		report.ParseFailures[column]++
		b.logger.Debug().Str("column", column).Msg("malformed list value replaced with empty list")
	}
	return entries
}
