// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNoTable is returned when the catalog holds no feature table yet.
var ErrNoTable = errors.New("catalog has no feature table")

// List columns hold JSON arrays so no DuckDB extension is needed to read them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		row_idx        INTEGER PRIMARY KEY,
		id             BIGINT NOT NULL,
		title          VARCHAR NOT NULL,
		release_date   VARCHAR NOT NULL,
		genres         VARCHAR NOT NULL,
		display_genres VARCHAR NOT NULL,
		cast_members   VARCHAR NOT NULL,
		keywords       VARCHAR NOT NULL,
		director       VARCHAR NOT NULL,
		vote_count     BIGINT NOT NULL,
		vote_average   DOUBLE NOT NULL,
		adult          BOOLEAN NOT NULL,
		soup           VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_meta (
		key   VARCHAR PRIMARY KEY,
		value VARCHAR NOT NULL
	)`,
}

func (db *DB) initialize(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// closeQuietly closes a resource, ignoring any error.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
