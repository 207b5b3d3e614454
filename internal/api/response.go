// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/popularity"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// respondJSON writes response with an ETag computed over the body. A
// matching If-None-Match on a 200 yields 304 with no body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *models.APIResponse) {
	response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// The timestamp and request ID change per response, so the tag covers
	// the payload only.
	etag := generateETag(response)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)

	if status == http.StatusOK && etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("failed to write JSON response")
	}
}

// generateETag hashes the status, data and error of response with FNV-1a.
func generateETag(response *models.APIResponse) string {
	stable, err := json.Marshal(struct {
		Status string           `json:"status"`
		Data   interface{}      `json:"data"`
		Error  *models.APIError `json:"error,omitempty"`
	}{response.Status, response.Data, response.Error})
	if err != nil {
		return ""
	}
	hash := uint32(2166136261)
	for _, b := range stable {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}, queryTime time.Duration) {
	resp := models.Success(data, queryTime)
	respondJSON(w, r, http.StatusOK, &resp)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	resp := models.Failure(code, message, details)
	respondJSON(w, r, status, &resp)
}

func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}

// respondServiceError maps a recommendation service error to a response.
//
//	ErrUnavailable            -> 503 SERVICE_UNAVAILABLE
//	ErrInvalidPercentile      -> 400 VALIDATION_ERROR
//	context canceled/deadline -> 503 SERVICE_UNAVAILABLE
//	anything else             -> 500 INTERNAL_ERROR
func respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := logging.Ctx(r.Context())

	switch {
	case errors.Is(err, recommend.ErrUnavailable):
		logger.Warn().Err(err).Str("operation", op).Msg("recommendation service unavailable")
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable,
			"Recommendation data is unavailable", nil)
	case errors.Is(err, popularity.ErrInvalidPercentile):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(),
			map[string]interface{}{"percentile": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug().Err(err).Str("operation", op).Msg("request abandoned")
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable,
			"Request canceled", nil)
	default:
		logger.Error().Err(err).Str("operation", op).Msg("query failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
			"Internal server error", nil)
	}
}
