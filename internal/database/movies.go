// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/features"
)

const insertMovieSQL = `INSERT INTO movies (
	row_idx, id, title, release_date, genres, display_genres, cast_members,
	keywords, director, vote_count, vote_average, adult, soup
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectMoviesSQL = `SELECT
	id, title, release_date, genres, display_genres, cast_members,
	keywords, director, vote_count, vote_average, adult, soup
FROM movies ORDER BY row_idx`

// SaveTable replaces the catalog contents with t, keeping row order.
func (db *DB) SaveTable(ctx context.Context, t *features.Table) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return fmt.Errorf("clear movies: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertMovieSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := 0; i < t.Len(); i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		r := t.At(i)
		lists, lerr := encodeLists(r.Genres, r.DisplayGenres, r.Cast, r.Keywords)
		if lerr != nil {
			err = fmt.Errorf("encode row %d: %w", i, lerr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, i, r.ID, r.Title, r.ReleaseDate,
			lists[0], lists[1], lists[2], lists[3],
			r.Director, r.VoteCount, r.VoteAverage, r.Adult, r.Soup); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO catalog_meta (key, value) VALUES ('saved_at', ?)`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record save time: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadTable reads the catalog back into a feature table. It returns
// ErrNoTable when nothing has been saved.
func (db *DB) LoadTable(ctx context.Context) (*features.Table, error) {
	rows, err := db.conn.QueryContext(ctx, selectMoviesSQL)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer closeQuietly(rows)

	var records []features.MovieRecord
	for rows.Next() {
		var (
			r                                       features.MovieRecord
			genres, displayGenres, cast, keywords string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.ReleaseDate, &genres, &displayGenres, &cast,
			&keywords, &r.Director, &r.VoteCount, &r.VoteAverage, &r.Adult, &r.Soup); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if err := decodeLists(
			listField{genres, &r.Genres},
			listField{displayGenres, &r.DisplayGenres},
			listField{cast, &r.Cast},
			listField{keywords, &r.Keywords},
		); err != nil {
			return nil, fmt.Errorf("decode movie %d: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoTable
	}
	return features.NewTable(records), nil
}

// SavedAt returns when the table was last saved.
func (db *DB) SavedAt(ctx context.Context) (time.Time, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM catalog_meta WHERE key = 'saved_at'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrNoTable
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query save time: %w", err)
	}
	return time.Parse(time.RFC3339, value)
}

// Clear removes the stored table.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return fmt.Errorf("clear movies: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM catalog_meta"); err != nil {
		return fmt.Errorf("clear catalog meta: %w", err)
	}
	return nil
}

func encodeLists(lists ...[]string) ([]string, error) {
	out := make([]string, len(lists))
	for i, l := range lists {
		if l == nil {
			l = []string{}
		}
		b, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		out[i] = string(b)
	}
	return out, nil
}

type listField struct {
	raw string
	dst *[]string
}

func decodeLists(fields ...listField) error {
	for _, f := range fields {
		var l []string
		if err := json.Unmarshal([]byte(f.raw), &l); err != nil {
			return err
		}
		*f.dst = l
	}
	return nil
}
