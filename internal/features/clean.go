// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"math"
	"strconv"
	"strings"
)

// maxListEntries bounds cast, keywords, and genres per movie.
const maxListEntries = 3

// parseEntries decodes a stringified list of dicts. Blank input is an empty
// list; malformed input reports ok=false and yields an empty list.
func parseEntries(raw string) (entries []map[string]any, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil, true
	}
	v, err := parseLiteral(raw)
	if err != nil {
		return nil, false
	}
	list, isList := v.([]any)
	if !isList {
		return nil, false
	}
	entries = make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, isMap := item.(map[string]any); isMap {
			entries = append(entries, m)
		}
	}
	return entries, true
}

// names returns the "name" field of the first maxListEntries entries.
func names(entries []map[string]any) []string {
	out := make([]string, 0, min(len(entries), maxListEntries))
	for _, e := range entries {
		if len(out) == maxListEntries {
			break
		}
		if name, ok := e["name"].(string); ok {
			out = append(out, name)
		}
	}
	return out
}

// director returns the first crew member whose job is Director.
func director(crew []map[string]any) string {
	for _, e := range crew {
		if job, _ := e["job"].(string); job == "Director" {
			name, _ := e["name"].(string)
			return name
		}
	}
	return ""
}

// normalize lowercases s and strips spaces so multi-word names form a
// single token ("Tom Hanks" -> "tomhanks").
func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = normalize(s)
	}
	return out
}

// soup joins keywords, cast, director, and genres in that fixed order.
func soup(keywords, cast []string, director string, genres []string) string {
	return strings.Join(keywords, " ") + " " + strings.Join(cast, " ") + " " + director + " " + strings.Join(genres, " ")
}

// parseVoteCount truncates numeric input to a non-negative integer; anything
// else is 0.
func parseVoteCount(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt64 {
		return 0
	}
	return int64(f)
}

func parseVoteAverage(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}
