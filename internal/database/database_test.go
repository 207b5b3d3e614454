// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/features"
)

// testDBSemaphore serializes DuckDB use across tests. Concurrent CGO
// connections can hang under CI resource pressure, so the slot is held
// for the whole test.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := Open(context.Background(), Config{Path: ":memory:", MaxMemory: "512MB"})
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func testTable() *features.Table {
	return features.NewTable([]features.MovieRecord{
		{
			ID: 1, Title: "The Matrix", ReleaseDate: "1999-03-31",
			Genres: []string{"action", "sciencefiction"}, DisplayGenres: []string{"Action", "Science Fiction"},
			Cast: []string{"keanureeves"}, Keywords: []string{"savingtheworld"}, Director: "lanawachowski",
			VoteCount: 9079, VoteAverage: 8.1, Soup: "savingtheworld keanureeves lanawachowski action sciencefiction",
		},
		{
			ID: 2, Title: "The Shawshank Redemption", ReleaseDate: "1994-09-23",
			Genres: []string{"drama"}, DisplayGenres: []string{"Drama"},
			Cast: []string{"timrobbins"}, Keywords: []string{}, Director: "frankdarabont",
			VoteCount: 8358, VoteAverage: 8.5, Soup: "timrobbins frankdarabont drama",
		},
		{
			ID: 4, Title: "Orphan", ReleaseDate: "",
			Genres: []string{}, DisplayGenres: []string{},
			Cast: []string{}, Keywords: []string{}, Director: "",
			VoteCount: 0, VoteAverage: 0, Soup: "",
		},
		{
			ID: 7, Title: "The Matrix", ReleaseDate: "2021-12-22",
			Genres: []string{"action"}, DisplayGenres: []string{"Action"},
			Cast: []string{}, Keywords: []string{}, Director: "lanawachowski",
			VoteCount: 10, VoteAverage: 6.0, Soup: "lanawachowski action",
		},
	})
}

func TestLoadTableEmpty(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.LoadTable(context.Background())
	if !errors.Is(err, ErrNoTable) {
		t.Fatalf("LoadTable() error = %v, want ErrNoTable", err)
	}
	if _, err := db.SavedAt(context.Background()); !errors.Is(err, ErrNoTable) {
		t.Errorf("SavedAt() error = %v, want ErrNoTable", err)
	}
}

func TestSaveLoadTable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	want := testTable()

	if err := db.SaveTable(ctx, want); err != nil {
		t.Fatalf("SaveTable() error = %v", err)
	}
	// A second save replaces rather than appends.
	if err := db.SaveTable(ctx, want); err != nil {
		t.Fatalf("SaveTable() second call error = %v", err)
	}

	got, err := db.LoadTable(ctx)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), want.Len())
	}
	for i := 0; i < want.Len(); i++ {
		w, g := want.At(i), got.At(i)
		if g.ID != w.ID || g.Title != w.Title || g.Soup != w.Soup || g.Director != w.Director {
			t.Errorf("row %d = %+v, want %+v", i, g, w)
		}
		if len(g.Genres) != len(w.Genres) || len(g.Cast) != len(w.Cast) || len(g.DisplayGenres) != len(w.DisplayGenres) {
			t.Errorf("row %d lists = %v/%v/%v, want %v/%v/%v", i,
				g.Genres, g.Cast, g.DisplayGenres, w.Genres, w.Cast, w.DisplayGenres)
		}
		if g.VoteCount != w.VoteCount || g.VoteAverage != w.VoteAverage {
			t.Errorf("row %d votes = %d/%v, want %d/%v", i, g.VoteCount, g.VoteAverage, w.VoteCount, w.VoteAverage)
		}
	}

	row, ok := got.Lookup("The Matrix")
	if !ok || row != 0 {
		t.Errorf("Lookup(The Matrix) = %d, %v; want 0, true", row, ok)
	}

	savedAt, err := db.SavedAt(ctx)
	if err != nil {
		t.Fatalf("SavedAt() error = %v", err)
	}
	if time.Since(savedAt) > time.Hour {
		t.Errorf("SavedAt() = %v, want recent", savedAt)
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.SaveTable(ctx, testTable()); err != nil {
		t.Fatalf("SaveTable() error = %v", err)
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Rows != 4 || stats.UniqueTitles != 3 {
		t.Errorf("rows/unique = %d/%d, want 4/3", stats.Rows, stats.UniqueTitles)
	}
	if stats.MissingDirector != 1 {
		t.Errorf("MissingDirector = %d, want 1", stats.MissingDirector)
	}
	if stats.InvalidReleaseDates != 1 {
		t.Errorf("InvalidReleaseDates = %d, want 1", stats.InvalidReleaseDates)
	}
	if stats.VoteAverageMax != 8.5 || stats.VoteAverageMin != 0 {
		t.Errorf("vote range = %v..%v, want 0..8.5", stats.VoteAverageMin, stats.VoteAverageMax)
	}
	if stats.EarliestRelease != "1994-09-23" || stats.LatestRelease != "2021-12-22" {
		t.Errorf("release range = %q..%q", stats.EarliestRelease, stats.LatestRelease)
	}

	genres, err := db.GenreCounts(ctx, 1)
	if err != nil {
		t.Fatalf("GenreCounts() error = %v", err)
	}
	if len(genres) != 1 || genres[0].Genre != "Action" || genres[0].Count != 2 {
		t.Errorf("GenreCounts(1) = %+v, want [{Action 2}]", genres)
	}
}

func TestClear(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.SaveTable(ctx, testTable()); err != nil {
		t.Fatalf("SaveTable() error = %v", err)
	}
	if err := db.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := db.LoadTable(ctx); !errors.Is(err, ErrNoTable) {
		t.Errorf("LoadTable() after Clear error = %v, want ErrNoTable", err)
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	path := filepath.Join(t.TempDir(), "nested", "catalog.duckdb")
	db, err := Open(context.Background(), Config{Path: path, Threads: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
