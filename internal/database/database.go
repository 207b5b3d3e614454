// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package database provides the DuckDB movie catalog: a typed copy of the
// merged feature table that doubles as the table cache and backs the
// SQL-side dataset diagnostics.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"
)

// Config configures the catalog connection.
type Config struct {
	// Path is the database file. Empty or ":memory:" opens an in-memory catalog.
	Path      string
	Threads   int
	MaxMemory string
}

// DB wraps the DuckDB connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open connects to DuckDB and creates the schema.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}
	if path != "" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.initialize(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Path returns the database file, or "" for an in-memory catalog.
func (db *DB) Path() string {
	return db.path
}

// Conn returns the underlying connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}
