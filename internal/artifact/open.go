// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package artifact

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string
	Path    string // directory for file and badger backends
	Minio   MinioConfig

	// IOLimitBytesPerSec caps artifact throughput. Zero is unlimited.
	IOLimitBytesPerSec int64
}

// Open returns the backend named by opts.Backend, throttled when
// opts.IOLimitBytesPerSec is set.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	store, err := openBackend(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	return Throttle(store, opts.IOLimitBytesPerSec), nil
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func openBackend(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Path)
	case BackendBadger:
		return OpenBadgerStore(opts.Path)
	case BackendMinio:
		client, err := NewMinioClient(opts.Minio)
		if err != nil {
			return nil, err
		}
		store := NewMinioStore(client, opts.Minio, logger)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case BackendNone:
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", opts.Backend)
	}
}
