// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vectorize

import (
	"strings"
	"unicode"
)

// minTokenRunes is the shortest run of word characters kept as a token.
const minTokenRunes = 2

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Tokenize lowercases s and splits it into maximal runs of word characters
// (letters, digits, underscore) at least two runes long.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	start, runes := -1, 0
	flush := func(end int) {
		if start >= 0 && runes >= minTokenRunes {
			tokens = append(tokens, s[start:end])
		}
		start, runes = -1, 0
	}
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		flush(i)
	}
	flush(len(s))
	return tokens
}
