// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package artifact persists the build artifacts of the recommendation
// pipeline (merged feature table, vector matrix, vocabulary, similarity
// index) so later starts can skip rebuilding them.
//
// Cache policy is presence-implies-valid: a stored artifact is used as-is
// with no freshness check against the raw sources. A missing artifact
// (ErrNotFound) triggers a rebuild; an artifact that exists but cannot be
// decoded (ErrCorrupt) is fatal.
//
// # Backends
//
//   - FileStore: one file per key under a directory
//   - BadgerStore: embedded BadgerDB key-value store
//   - MinioStore: S3-compatible object storage, guarded by a circuit breaker
//   - NopStore: caching disabled
//
// Payloads are JSON encoded and zstd compressed by Save and Load.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMinio  = "minio"
	BackendNone   = "none"
)

var (
	// ErrNotFound is returned when no artifact is stored under a key.
	ErrNotFound = errors.New("artifact not found")

	// ErrCorrupt is returned when a stored artifact cannot be decoded.
	ErrCorrupt = errors.New("artifact corrupt")

	// ErrInvalidKey is returned for keys outside [A-Za-z0-9_.-].
	ErrInvalidKey = errors.New("invalid artifact key")
)

// Store is a byte-oriented artifact backend.
type Store interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Name identifies the backend in logs.
	Name() string
	// Close releases backend resources.
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// NopStore stores nothing; every Get misses.
type NopStore struct{}

// Get implements Store.
func (NopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

// Put implements Store.
func (NopStore) Put(context.Context, string, []byte) error { return nil }

// Delete implements Store.
func (NopStore) Delete(context.Context, string) error { return nil }

// Name implements Store.
func (NopStore) Name() string { return BackendNone }

// Close implements Store.
func (NopStore) Close() error { return nil }

var (
	_ Store = NopStore{}
	_ Store = (*FileStore)(nil)
	_ Store = (*BadgerStore)(nil)
	_ Store = (*MinioStore)(nil)
)
