// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package artifact

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

var (
	encoderPool sync.Pool
	decoderPool sync.Pool
)

func getEncoder() *zstd.Encoder {
	if v := encoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getDecoder() *zstd.Decoder {
	if v := decoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode marshals v to JSON and compresses it.
func Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return Compress(raw), nil
}

// Decode decompresses data and unmarshals it into v. Any failure is
// reported as ErrCorrupt.
func Decode(data []byte, v any) error {
	raw, err := Decompress(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}

// Compress zstd-compresses raw.
func Compress(raw []byte) []byte {
	enc := getEncoder()
	defer encoderPool.Put(enc)
	return enc.EncodeAll(raw, make([]byte, 0, len(raw)/4))
}

// Decompress reverses Compress. Invalid frames are ErrCorrupt.
func Decompress(data []byte) ([]byte, error) {
	dec := getDecoder()
	defer decoderPool.Put(dec)
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return raw, nil
}

// Save encodes v and stores it under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if err := s.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store artifact %s: %w", key, err)
	}
	return nil
}

// Load fetches key into v. It reports found=false on ErrNotFound and
// wraps decode failures with ErrCorrupt.
func Load(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load artifact %s: %w", key, err)
	}
	if err := Decode(data, v); err != nil {
		return true, fmt.Errorf("decode artifact %s: %w", key, err)
	}
	return true, nil
}
