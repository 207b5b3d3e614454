// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package resolve

import "slices"

// block is a matching run: a[A:A+Size] == b[B:B+Size].
type block struct {
	A, B, Size int
}

// autojunkMin is the sequence length from which very frequent elements of b
// are ignored when seeding matches.
const autojunkMin = 200

// matcher finds matching blocks between two rune sequences using the
// longest-common-substring recursion of the classic sequence matcher.
type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	if n := len(b); n >= autojunkMin {
		limit := n/100 + 1
		for r, js := range b2j {
			if len(js) > limit {
				delete(b2j, r)
			}
		}
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// longest returns the longest matching block in a[alo:ahi], b[blo:bhi],
// preferring the earliest start in a, then in b.
func (m *matcher) longest(alo, ahi, blo, bhi int) block {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	// Extend across elements dropped by the autojunk heuristic.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}
	return block{A: besti, B: bestj, Size: bestsize}
}

// blocks returns the non-adjacent matching blocks in order, terminated by
// the sentinel {len(a), len(b), 0}.
func (m *matcher) blocks() []block {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var found []block
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x := m.longest(s.alo, s.ahi, s.blo, s.bhi)
		if x.Size == 0 {
			continue
		}
		found = append(found, x)
		if s.alo < x.A && s.blo < x.B {
			queue = append(queue, span{s.alo, x.A, s.blo, x.B})
		}
		if x.A+x.Size < s.ahi && x.B+x.Size < s.bhi {
			queue = append(queue, span{x.A + x.Size, s.ahi, x.B + x.Size, s.bhi})
		}
	}
	slices.SortFunc(found, func(p, q block) int {
		switch {
		case p.A != q.A:
			return p.A - q.A
		case p.B != q.B:
			return p.B - q.B
		default:
			return p.Size - q.Size
		}
	})

	out := make([]block, 0, len(found)+1)
	var cur block
	for _, x := range found {
		if cur.A+cur.Size == x.A && cur.B+cur.Size == x.B {
			cur.Size += x.Size
			continue
		}
		if cur.Size > 0 {
			out = append(out, cur)
		}
		cur = x
	}
	if cur.Size > 0 {
		out = append(out, cur)
	}
	return append(out, block{A: len(m.a), B: len(m.b)})
}

// lcsLen returns the length of the longest common subsequence of a and b.
func lcsLen(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
