// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package resolve

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// WRatio scale factors.
const (
	unbaseScale         = 0.95
	partialScale        = 0.90
	longPartialScale    = 0.60
	partialLengthRatio  = 1.5
	longPartialLenRatio = 8.0
)

// intRound rounds half to even.
func intRound(f float64) int {
	return int(math.RoundToEven(f))
}

// FullProcess lowercases s, replaces every character that is not a letter,
// digit, or underscore with a space, and trims surrounding whitespace. With
// forceASCII, non-ASCII characters are removed first.
func FullProcess(s string, forceASCII bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if forceASCII && r > unicode.MaxASCII {
			continue
		}
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

func ratioValue(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(lcsLen(a, b)) / float64(total)
}

func partialRatioValue(a, b []rune) float64 {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	best := 0.0
	for _, blk := range newMatcher(shorter, longer).blocks() {
		start := max(0, blk.B-blk.A)
		end := min(start+len(shorter), len(longer))
		r := ratioValue(shorter, longer[start:end])
		if r > 0.995 {
			return 1
		}
		best = max(best, r)
	}
	return best
}

// Ratio is the normalized indel similarity of a and b in [0,100].
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return intRound(100 * ratioValue([]rune(a), []rune(b)))
}

// PartialRatio scores the best alignment of the shorter string against
// same-length windows of the longer one.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return intRound(100 * partialRatioValue([]rune(a), []rune(b)))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

// TokenSortRatio compares the strings after sorting their tokens.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// PartialTokenSortRatio is TokenSortRatio using PartialRatio.
func PartialTokenSortRatio(a, b string) int {
	return PartialRatio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared tokens against each side's remainder.
func TokenSetRatio(a, b string) int {
	return tokenSet(a, b, Ratio)
}

// PartialTokenSetRatio is TokenSetRatio using PartialRatio.
func PartialTokenSetRatio(a, b string) int {
	return tokenSet(a, b, PartialRatio)
}

func tokenSet(a, b string, score func(string, string) int) int {
	if a == "" || b == "" {
		return 0
	}
	ta, tb := tokenSetOf(a), tokenSetOf(b)
	var sect, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	slices.Sort(sect)
	slices.Sort(onlyA)
	slices.Sort(onlyB)

	s := strings.Join(sect, " ")
	combinedA := strings.TrimSpace(s + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(s + " " + strings.Join(onlyB, " "))
	return max(score(s, combinedA), score(s, combinedB), score(combinedA, combinedB))
}

func tokenSetOf(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// WRatio combines ratio, partial, token-sort and token-set scores with
// length-dependent weights. Inputs are processed with FullProcess (ASCII
// forced); an input that is empty after processing scores 0.
func WRatio(a, b string) int {
	return wratioProcessed(FullProcess(a, true), FullProcess(b, true))
}

// wratioProcessed is WRatio over already-processed inputs.
func wratioProcessed(p1, p2 string) int {
	if p1 == "" || p2 == "" {
		return 0
	}
	base := float64(Ratio(p1, p2))
	l1, l2 := float64(len([]rune(p1))), float64(len([]rune(p2)))
	lenRatio := max(l1, l2) / min(l1, l2)

	if lenRatio < partialLengthRatio {
		tsor := float64(TokenSortRatio(p1, p2)) * unbaseScale
		tser := float64(TokenSetRatio(p1, p2)) * unbaseScale
		return intRound(max(base, tsor, tser))
	}

	scale := partialScale
	if lenRatio > longPartialLenRatio {
		scale = longPartialScale
	}
	partial := float64(PartialRatio(p1, p2)) * scale
	ptsor := float64(PartialTokenSortRatio(p1, p2)) * unbaseScale * scale
	ptser := float64(PartialTokenSetRatio(p1, p2)) * unbaseScale * scale
	return intRound(max(base, partial, ptsor, ptser))
}
