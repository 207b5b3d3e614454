// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"fmt"
)

// CatalogStats summarizes the stored table with SQL aggregates.
type CatalogStats struct {
	Rows                int64   `json:"rows"`
	UniqueTitles        int64   `json:"unique_titles"`
	MissingDirector     int64   `json:"missing_director"`
	VoteAverageMin      float64 `json:"vote_average_min"`
	VoteAverageMean     float64 `json:"vote_average_mean"`
	VoteAverageMax      float64 `json:"vote_average_max"`
	OutOfBoundsVotes    int64   `json:"out_of_bounds_votes"`
	InvalidReleaseDates int64   `json:"invalid_release_dates"`
	EarliestRelease     string  `json:"earliest_release,omitempty"`
	LatestRelease       string  `json:"latest_release,omitempty"`
}

const statsSQL = `SELECT
	COUNT(*),
	COUNT(DISTINCT title),
	COUNT(*) FILTER (WHERE director = ''),
	COALESCE(MIN(vote_average), 0),
	COALESCE(AVG(vote_average), 0),
	COALESCE(MAX(vote_average), 0),
	COUNT(*) FILTER (WHERE vote_average < 0 OR vote_average > 10),
	COUNT(*) FILTER (WHERE TRY_CAST(release_date AS DATE) IS NULL),
	COALESCE(CAST(MIN(TRY_CAST(release_date AS DATE)) AS VARCHAR), ''),
	COALESCE(CAST(MAX(TRY_CAST(release_date AS DATE)) AS VARCHAR), '')
FROM movies`

// Stats computes catalog-wide aggregates.
func (db *DB) Stats(ctx context.Context) (CatalogStats, error) {
	var s CatalogStats
	err := db.conn.QueryRowContext(ctx, statsSQL).Scan(
		&s.Rows, &s.UniqueTitles, &s.MissingDirector,
		&s.VoteAverageMin, &s.VoteAverageMean, &s.VoteAverageMax,
		&s.OutOfBoundsVotes, &s.InvalidReleaseDates,
		&s.EarliestRelease, &s.LatestRelease,
	)
	if err != nil {
		return CatalogStats{}, fmt.Errorf("query catalog stats: %w", err)
	}
	return s, nil
}

// GenreCounts returns how many movies list each display genre, most common
// first. limit <= 0 returns every genre.
func (db *DB) GenreCounts(ctx context.Context, limit int) ([]GenreCount, error) {
	query := `SELECT g.genre, COUNT(*) AS n
FROM (SELECT UNNEST(regexp_extract_all(display_genres, '"([^"]*)"', 1)) AS genre FROM movies) AS g
GROUP BY g.genre
ORDER BY n DESC, g.genre`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query genre counts: %w", err)
	}
	defer closeQuietly(rows)

	var out []GenreCount
	for rows.Next() {
		var gc GenreCount
		if err := rows.Scan(&gc.Genre, &gc.Count); err != nil {
			return nil, fmt.Errorf("scan genre count: %w", err)
		}
		out = append(out, gc)
	}
	return out, rows.Err()
}

// GenreCount is a display genre and its movie count.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}
