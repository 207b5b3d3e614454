// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/validation"
)

// Search handles GET /api/v1/search?q=...
//
// Returns the canonical titles matching q, best first. No match is an
// empty list.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	req := validation.SearchRequest{Q: p.String("q")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	start := time.Now()
	results, err := h.svc.Search(r.Context(), req.Q)
	if err != nil {
		respondServiceError(w, r, "search", err)
		return
	}
	respondSuccess(w, r, results, time.Since(start))
}

// Recommend handles GET /api/v1/recommend?title=...&top_n=15&fuzzy=true
//
// With fuzzy (the default) title is resolved to its best match first and
// the response carries the resolved title and score. With fuzzy=false
// title must be canonical and the response is the bare list.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	req := validation.RecommendRequest{
		Title: p.String("title"),
		TopN:  p.Int("top_n", h.svc.Config().DefaultTopN),
		Fuzzy: p.Bool("fuzzy", true),
	}
	if verr := p.Err(); verr != nil {
		respondValidationError(w, r, verr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	start := time.Now()
	if req.Fuzzy {
		out, err := h.svc.RecommendForQuery(r.Context(), req.Title, req.TopN)
		if err != nil {
			respondServiceError(w, r, "recommend", err)
			return
		}
		respondSuccess(w, r, out, time.Since(start))
		return
	}

	recs, err := h.svc.Recommend(r.Context(), req.Title, req.TopN)
	if err != nil {
		respondServiceError(w, r, "recommend", err)
		return
	}
	respondSuccess(w, r, recs, time.Since(start))
}

// TopRated handles GET /api/v1/top-rated?top_n=100&percentile=0.90
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	cfg := h.svc.Config()
	p := newQueryParser(r.URL.Query())
	req := validation.TopRatedRequest{
		TopN:       p.Int("top_n", cfg.DefaultTopRated),
		Percentile: p.Float("percentile", cfg.DefaultPercentile),
	}
	if verr := p.Err(); verr != nil {
		respondValidationError(w, r, verr)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	start := time.Now()
	movies, err := h.svc.TopRated(r.Context(), req.TopN, req.Percentile)
	if err != nil {
		respondServiceError(w, r, "top_rated", err)
		return
	}
	respondSuccess(w, r, movies, time.Since(start))
}

// Stats handles GET /api/v1/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		respondServiceError(w, r, "stats", err)
		return
	}
	respondSuccess(w, r, stats, time.Since(start))
}
