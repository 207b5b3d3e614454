// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package models defines the HTTP wire types shared by the API layer.
//
// Domain results (search matches, recommendations, top-rated charts) are
// defined by the recommend package and carried in APIResponse.Data as is.
package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": [{"title": "Toy Story", "score": 100, ...}],
//	  "metadata": {
//	    "timestamp": "2026-03-01T12:00:00Z",
//	    "query_time_ms": 3
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "Invalid request parameters",
//	    "details": {"top_n": "must be at most 100"}
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// QueryTimeMS is the time the handler spent in the recommendation service.
// RequestID echoes the X-Request-ID of the request.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Success wraps data in a success envelope stamped with the current time.
func Success(data interface{}, queryTime time.Duration) APIResponse {
	return APIResponse{
		Status: StatusSuccess,
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryTime.Milliseconds(),
		},
	}
}

// Failure builds an error envelope.
func Failure(code, message string, details map[string]interface{}) APIResponse {
	return APIResponse{
		Status:   StatusError,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
