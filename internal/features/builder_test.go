// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const testMetadata = `adult,genres,id,release_date,title,vote_average,vote_count
False,"[{'id': 28, 'name': 'Action'}, {'id': 12, 'name': 'Adventure'}, {'id': 14, 'name': 'Fantasy'}, {'id': 878, 'name': 'Science Fiction'}]",1,1999-03-31,The Matrix,8.1,9079
False,"[{'id': 18, 'name': 'Drama'}]",2,1994-09-23,The Shawshank Redemption,8.5,8358.0
False,"[{'id': 18, 'name': 'Drama'}]",1,2001-01-01,Duplicate Matrix,1.0,1
 - Written by Someone,"[]",1997-08-20,bad row,,,
True,"not a list",3,2010-07-16,Inception,8.1,abc
False,,4,,Orphan,oops,-5
`

const testCredits = `cast,crew,id
"[{'cast_id': 1, 'name': 'Keanu Reeves'}, {'cast_id': 2, 'name': 'Laurence Fishburne'}, {'cast_id': 3, 'name': 'Carrie-Anne Moss'}, {'cast_id': 4, 'name': 'Hugo Weaving'}]","[{'job': 'Producer', 'name': 'Joel Silver'}, {'job': 'Director', 'name': 'Lana Wachowski'}, {'job': 'Director', 'name': 'Lilly Wachowski'}]",1
"[{'name': 'Tim Robbins'}]","[{'job': 'Director', 'name': 'Frank Darabont'}]",2
"[{'name': 'Leonardo DiCaprio'}]","[{'job': 'Writer', 'name': 'Christopher Nolan'}]",3
"[{'name': 'Someone Else'}]","[]",2
`

const testKeywords = `id,keywords
1,"[{'id': 1, 'name': 'saving the world'}, {'id': 2, 'name': 'artificial intelligence'}]"
2,"[{'id': 3, 'name': 'prison'}]"
3,"[{'id': 4, 'name': 'dream'}"
`

func buildTestTable(t *testing.T) (*Table, BuildReport) {
	t.Helper()
	b := NewBuilder(zerolog.Nop())
	table, report, err := b.BuildFromReaders(context.Background(), Readers{
		Metadata: strings.NewReader(testMetadata),
		Credits:  strings.NewReader(testCredits),
		Keywords: strings.NewReader(testKeywords),
	})
	if err != nil {
		t.Fatalf("BuildFromReaders() error = %v", err)
	}
	return table, report
}

func TestBuildFromReaders(t *testing.T) {
	table, report := buildTestTable(t)

	if table.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", table.Len())
	}
	if report.DuplicateIDs != 1 {
		t.Errorf("DuplicateIDs = %d, want 1", report.DuplicateIDs)
	}
	if report.AdultDiscarded != 1 {
		t.Errorf("AdultDiscarded = %d, want 1", report.AdultDiscarded)
	}
	if report.MissingCredits != 1 || report.MissingKeywords != 1 {
		t.Errorf("missing credits/keywords = %d/%d, want 1/1", report.MissingCredits, report.MissingKeywords)
	}
	if report.ParseFailures[colGenres] != 1 {
		t.Errorf("genre parse failures = %d, want 1", report.ParseFailures[colGenres])
	}
	if report.ParseFailures[colKeywords] != 1 {
		t.Errorf("keyword parse failures = %d, want 1", report.ParseFailures[colKeywords])
	}

	matrix := table.At(0)
	if matrix.ID != 1 || matrix.Title != "The Matrix" {
		t.Fatalf("row 0 = %d %q, want 1 The Matrix", matrix.ID, matrix.Title)
	}
	wantSoup := "savingtheworld artificialintelligence keanureeves laurencefishburne carrie-annemoss lanawachowski action adventure fantasy"
	if matrix.Soup != wantSoup {
		t.Errorf("Soup = %q, want %q", matrix.Soup, wantSoup)
	}
	if strings.Join(matrix.DisplayGenres, ",") != "Action,Adventure,Fantasy" {
		t.Errorf("DisplayGenres = %v", matrix.DisplayGenres)
	}
	if matrix.VoteCount != 9079 || matrix.VoteAverage != 8.1 {
		t.Errorf("votes = %d/%v", matrix.VoteCount, matrix.VoteAverage)
	}

	shawshank := table.At(1)
	if shawshank.VoteCount != 8358 {
		t.Errorf("float vote_count = %d, want 8358", shawshank.VoteCount)
	}
	if len(shawshank.Cast) != 1 || shawshank.Cast[0] != "timrobbins" {
		t.Errorf("Cast = %v, want first credits row only", shawshank.Cast)
	}

	inception := table.At(2)
	if !inception.Adult {
		t.Error("Adult = false, want true")
	}
	if inception.Director != "" {
		t.Errorf("Director = %q, want empty", inception.Director)
	}
	if len(inception.Genres) != 0 || len(inception.Keywords) != 0 {
		t.Errorf("malformed lists not replaced: genres=%v keywords=%v", inception.Genres, inception.Keywords)
	}
	if inception.VoteCount != 0 {
		t.Errorf("invalid vote_count = %d, want 0", inception.VoteCount)
	}

	orphan := table.At(3)
	if orphan.VoteCount != 0 || orphan.VoteAverage != 0 {
		t.Errorf("orphan votes = %d/%v, want 0/0", orphan.VoteCount, orphan.VoteAverage)
	}
	if orphan.Soup != "   " {
		t.Errorf("orphan Soup = %q, want three separators", orphan.Soup)
	}
}

func TestBuildTruncation(t *testing.T) {
	table, _ := buildTestTable(t)
	for i := 0; i < table.Len(); i++ {
		r := table.At(i)
		if len(r.Cast) > 3 || len(r.Keywords) > 3 || len(r.Genres) > 3 {
			t.Errorf("row %d exceeds list bound: cast=%d keywords=%d genres=%d", i, len(r.Cast), len(r.Keywords), len(r.Genres))
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	first, _ := buildTestTable(t)
	second, _ := buildTestTable(t)
	for i := 0; i < first.Len(); i++ {
		a, b := first.At(i), second.At(i)
		if a.ID != b.ID || a.Soup != b.Soup {
			t.Errorf("row %d differs: %d %q vs %d %q", i, a.ID, a.Soup, b.ID, b.Soup)
		}
	}
}

func TestBuildMergeErrors(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		credits  string
		keywords string
		column   string
		wantErr  error
	}{
		{
			name:     "missing metadata column",
			metadata: "id,title\n1,A\n",
			credits:  "cast,crew,id\n",
			keywords: "id,keywords\n",
			column:   colAdult,
			wantErr:  ErrMissingColumn,
		},
		{
			name:     "non-integer metadata id",
			metadata: "adult,genres,id,release_date,title,vote_average,vote_count\nFalse,[],abc,,A,1,1\n",
			credits:  "cast,crew,id\n",
			keywords: "id,keywords\n",
			column:   colID,
			wantErr:  ErrInvalidID,
		},
		{
			name:     "non-integer credits id",
			metadata: "adult,genres,id,release_date,title,vote_average,vote_count\n",
			credits:  "cast,crew,id\n[],[],x1\n",
			keywords: "id,keywords\n",
			column:   colID,
			wantErr:  ErrInvalidID,
		},
		{
			name:     "empty keywords source",
			metadata: "adult,genres,id,release_date,title,vote_average,vote_count\n",
			credits:  "cast,crew,id\n",
			keywords: "",
			column:   colID,
			wantErr:  ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewBuilder(zerolog.Nop()).BuildFromReaders(context.Background(), Readers{
				Metadata: strings.NewReader(tt.metadata),
				Credits:  strings.NewReader(tt.credits),
				Keywords: strings.NewReader(tt.keywords),
			})
			var mergeErr *MergeError
			if !errors.As(err, &mergeErr) {
				t.Fatalf("error = %v, want *MergeError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if mergeErr.Column != tt.column {
				t.Errorf("Column = %q, want %q", mergeErr.Column, tt.column)
			}
		})
	}
}

func TestBuildDataUnavailable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), []byte(testMetadata), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, CreditsFile), []byte(testCredits), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := NewBuilder(zerolog.Nop()).Build(context.Background(), SourcesFromDir(dir))
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("Build() error = %v, want ErrDataUnavailable", err)
	}

	if err := os.WriteFile(filepath.Join(dir, KeywordsFile), []byte(testKeywords), 0o600); err != nil {
		t.Fatal(err)
	}
	table, _, err := NewBuilder(zerolog.Nop()).Build(context.Background(), SourcesFromDir(dir))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}
}

func TestBuildCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewBuilder(zerolog.Nop()).BuildFromReaders(ctx, Readers{
		Metadata: strings.NewReader(testMetadata),
		Credits:  strings.NewReader(testCredits),
		Keywords: strings.NewReader(testKeywords),
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestTableLookupFirstTitleWins(t *testing.T) {
	table := NewTable([]MovieRecord{
		{ID: 10, Title: "Heat"},
		{ID: 11, Title: "Alien"},
		{ID: 12, Title: "Heat"},
	})
	row, ok := table.Lookup("Heat")
	if !ok || row != 0 {
		t.Errorf("Lookup(Heat) = %d, %v; want 0, true", row, ok)
	}
	if _, ok := table.Lookup("Missing"); ok {
		t.Error("Lookup(Missing) found a row")
	}
}

func TestTableJSONRoundTripRebuildsIndex(t *testing.T) {
	table, _ := buildTestTable(t)
	data, err := table.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	var decoded Table
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if row, ok := decoded.Lookup("Inception"); !ok || row != 2 {
		t.Errorf("Lookup(Inception) = %d, %v; want 2, true", row, ok)
	}
}
