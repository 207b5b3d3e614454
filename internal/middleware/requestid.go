// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package middleware holds the HTTP middleware mounted in front of the
// ReelMatch API. Every middleware has the chi signature
// func(http.Handler) http.Handler.
package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds an upstream-supplied request ID.
const maxRequestIDLen = 128

// SlowRequestThreshold is the duration above which AccessLog warns.
var SlowRequestThreshold = time.Second

// RequestID adopts the caller's X-Request-ID or generates one, echoes it
// on the response, and stores it together with a fresh correlation ID in
// the request context for logging.Ctx.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)
		// chi's own key, so chimiddleware.GetReqID sees the same value
		ctx = context.WithValue(ctx, chimiddleware.RequestIDKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the request context.
func GetRequestID(r *http.Request) string {
	return logging.RequestIDFromContext(r.Context())
}

// AccessLog logs one line per request at debug level, or at warn level when
// the request took longer than SlowRequestThreshold or failed with a 5xx.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		logger := logging.Ctx(r.Context())
		event := logger.Debug()
		if elapsed > SlowRequestThreshold || status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Str("remote_addr", r.RemoteAddr).
			Msg("http request")
	})
}
