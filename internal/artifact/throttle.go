// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package artifact

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledStore caps the byte throughput of an underlying Store. Reads are
// charged after the bytes arrive, writes before they leave.
type ThrottledStore struct {
	Store
	limiter *rate.Limiter
}

// Throttle wraps s so Get and Put move at most bytesPerSec bytes per second.
// A non-positive limit returns s unchanged.
func Throttle(s Store, bytesPerSec int64) Store {
	if bytesPerSec <= 0 {
		return s
	}
	return &ThrottledStore{
		Store:   s,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec)),
	}
}

// wait charges n bytes against the limiter in burst-sized steps, since
// WaitN rejects requests larger than the burst.
func (t *ThrottledStore) wait(ctx context.Context, n int) error {
	burst := t.limiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := t.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// Get implements Store.
func (t *ThrottledStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := t.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := t.wait(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Put implements Store.
func (t *ThrottledStore) Put(ctx context.Context, key string, data []byte) error {
	if err := t.wait(ctx, len(data)); err != nil {
		return err
	}
	return t.Store.Put(ctx, key, data)
}
