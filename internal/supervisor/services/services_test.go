// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/reelmatch/internal/logging"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*WarmupService)(nil)
	_ HTTPServer     = (*http.Server)(nil)
)

// mockHTTPServer is a test double for HTTPServer.
type mockHTTPServer struct {
	listenErr     error
	block         bool
	shutdownErr   error
	shutdownCount atomic.Int32
	started       chan struct{}
	stopCh        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		started: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	if m.block {
		<-m.stopCh
		return http.ErrServerClosed
	}
	return nil
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.block = true
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-srv.started
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if got := srv.shutdownCount.Load(); got != 1 {
			t.Errorf("Shutdown called %d times, want 1", got)
		}
	})

	t.Run("listen error is returned", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.listenErr = errors.New("address in use")
		svc := NewHTTPServerService(srv, time.Second)

		err := svc.Serve(context.Background())
		if err == nil || !errors.Is(err, srv.listenErr) {
			t.Errorf("Serve() = %v, want wrapped listen error", err)
		}
	})

	t.Run("shutdown error is returned", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.block = true
		srv.shutdownErr = errors.New("drain timeout")
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		<-srv.started
		cancel()

		if err := <-errCh; !errors.Is(err, srv.shutdownErr) {
			t.Errorf("Serve() = %v, want wrapped shutdown error", err)
		}
	})

	t.Run("default timeout and name", func(t *testing.T) {
		svc := NewHTTPServerService(newMockHTTPServer(), 0)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout = %v, want 10s", svc.shutdownTimeout)
		}
		if svc.String() != "http-server" {
			t.Errorf("String() = %q", svc.String())
		}
	})
}

type fakeInitializer struct {
	err       error
	calls     atomic.Int32
	sawCorrID atomic.Bool
}

func (f *fakeInitializer) Init(ctx context.Context) error {
	f.calls.Add(1)
	if logging.CorrelationIDFromContext(ctx) != "" {
		f.sawCorrID.Store(true)
	}
	return f.err
}

func TestWarmupService(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure", errors.New("ratings file missing")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			fake := &fakeInitializer{err: tt.err}
			svc := NewWarmupService(fake, logging.NewTestLogger(&buf))

			err := svc.Serve(context.Background())
			if !errors.Is(err, suture.ErrDoNotRestart) {
				t.Errorf("Serve() = %v, want ErrDoNotRestart", err)
			}
			if got := fake.calls.Load(); got != 1 {
				t.Errorf("Init called %d times, want 1", got)
			}
			if !fake.sawCorrID.Load() {
				t.Error("Init context carried no correlation ID")
			}
			if tt.err != nil && !bytes.Contains(buf.Bytes(), []byte("warmup failed")) {
				t.Errorf("failure not logged: %s", buf.String())
			}
		})
	}
}
