/*
Package remap keeps per-character attributes aligned with text which changes
length during processing.

Substitution of no-join words inserts joiner control characters into text.
Project re-projects styles and link spans from the text before substitution
to the text after it. IndexTable translates the byte offsets reported by
shaping engines back to character indices.

All functions of this package are total: indices out of range are clamped.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package remap

import (
	"unicode/utf8"

	"github.com/npillmayer/devatext/engine/markup"
	"github.com/npillmayer/devatext/engine/nojoin"
)

// Project maps per-character styles and link spans of text before to text
// after. Characters of after not present in before are styled like the
// character preceding them. Styles missing for characters of before are
// substituted by def.
func Project(before, after string, styles []markup.StyledChar, links []markup.LinkSpan,
	def markup.StyledChar) ([]markup.StyledChar, []markup.LinkSpan) {
	//
	if before == after {
		n := utf8.RuneCountInString(after)
		return fit(styles, n, def), clampLinks(links, n)
	}
	src := SourceIndices(before, after)
	out := make([]markup.StyledChar, len(src))
	last := def
	prev := -1
	for i, s := range src {
		if s != prev && s >= 0 {
			last = styleAt(styles, s, def)
			prev = s
		}
		out[i] = last
	}
	return out, projectLinks(links, src)
}

// SourceIndices aligns after with before. For every character of after it
// returns the index of the character of before it originates from.
// Inserted joiner controls are attributed to the preceding character of
// before (or to character 0). Characters of after unknown to before consume
// a character of before if there is one left.
func SourceIndices(before, after string) []int {
	b := []rune(before)
	a := []rune(after)
	src := make([]int, len(a))
	bi := 0
	lastSrc := 0
	for ai, r := range a {
		switch {
		case bi < len(b) && b[bi] == r:
			lastSrc = bi
			bi++
		case nojoin.IsJoinControl(r):
			// inserted, does not consume
		default:
			if bi < len(b) {
				lastSrc = bi
				bi++
			}
		}
		src[ai] = lastSrc
	}
	if len(b) == 0 {
		for i := range src {
			src[i] = -1
		}
	}
	return src
}

// projectLinks maps each link span to [min, max+1) over the characters of
// after originating from the span. Links projecting to nothing are dropped.
func projectLinks(links []markup.LinkSpan, src []int) []markup.LinkSpan {
	if len(links) == 0 {
		return nil
	}
	projected := make([]markup.LinkSpan, 0, len(links))
	for _, l := range links {
		lo, hi := -1, -1
		for i, s := range src {
			if s < l.Start || s >= l.End() {
				continue
			}
			if lo < 0 {
				lo = i
			}
			hi = i
		}
		if lo < 0 {
			continue
		}
		projected = append(projected, markup.LinkSpan{ID: l.ID, Start: lo, Length: hi + 1 - lo})
	}
	return clampLinks(projected, len(src))
}

// clampLinks returns copies of link spans restricted to [0, n).
func clampLinks(links []markup.LinkSpan, n int) []markup.LinkSpan {
	if len(links) == 0 {
		return nil
	}
	clamped := make([]markup.LinkSpan, 0, len(links))
	for _, l := range links {
		start, end := clamp(l.Start, 0, n), clamp(l.End(), 0, n)
		if end <= start {
			continue
		}
		clamped = append(clamped, markup.LinkSpan{ID: l.ID, Start: start, Length: end - start})
	}
	return clamped
}

// fit copies styles, truncated or padded with def to length n.
func fit(styles []markup.StyledChar, n int, def markup.StyledChar) []markup.StyledChar {
	out := make([]markup.StyledChar, n)
	copy(out, styles)
	for i := len(styles); i < n; i++ {
		out[i] = def
	}
	return out
}

func styleAt(styles []markup.StyledChar, i int, def markup.StyledChar) markup.StyledChar {
	if i < 0 || i >= len(styles) {
		return def
	}
	return styles[i]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
