// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// MinioConfig locates an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Secure    bool

	// Breaker settings. Zero values select the defaults.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// MinioStore keeps artifacts as objects in a bucket. Every call runs
// through a circuit breaker so an unreachable endpoint fails fast.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	prefix  string
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewMinioClient builds a client for cfg.
func NewMinioClient(cfg MinioConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return client, nil
}

// NewMinioStore wraps client for bucket/prefix.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewMinioStore(client *minio.Client, cfg MinioConfig, logger zerolog.Logger) *MinioStore {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := logger.With().Str("component", "artifact").Str("backend", BackendMinio).Logger()

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "artifact-minio",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		}),
	}
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.prefix, name+fileSuffix)
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Get implements Store.
func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return s.breaker.Execute(func() ([]byte, error) {
		obj, err := s.client.GetObject(ctx, s.bucket, s.key(key), minio.GetObjectOptions{})
		if err != nil {
			if isNoSuchKey(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("get object: %w", err)
		}
		defer func() { _ = obj.Close() }()

		data, err := io.ReadAll(obj)
		if err != nil {
			if isNoSuchKey(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("read object: %w", err)
		}
		return data, nil
	})
}

// Put implements Store.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.breaker.Execute(func() ([]byte, error) {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(key), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/zstd",
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.breaker.Execute(func() ([]byte, error) {
		err := s.client.RemoveObject(ctx, s.bucket, s.key(key), minio.RemoveObjectOptions{})
		if err != nil && !isNoSuchKey(err) {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// BreakerState reports the circuit breaker state for health output.
func (s *MinioStore) BreakerState() string {
	return s.breaker.State().String()
}

// Name implements Store.
func (s *MinioStore) Name() string { return BackendMinio }

// Close implements Store.
func (s *MinioStore) Close() error { return nil }
