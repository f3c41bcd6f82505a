/*
Package cluster attributes shaped glyphs to the characters they display.

Shaping engines tag every glyph with a cluster value, the byte offset of the
first character the glyph belongs to. A cluster represents all characters up
to the next cluster of the line. Some engines cannot express clustering for
a run and report the same cluster for all of its glyphs; then characters are
distributed over the glyphs proportionally.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cluster

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/lines"
	"github.com/npillmayer/devatext/engine/remap"
)

// Span is a range of characters [Start, End).
type Span struct {
	Start, End int
}

// Len returns the number of characters of a span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Spans holds the character span of every glyph of a line.
type Spans struct {
	glyphs     []Span
	clusters   *treemap.Map // cluster value → Span, sorted by cluster value
	lineStart  int
	degenerate bool
}

// Resolve computes character spans for the glyphs of a line. Cluster
// values of the line are byte offsets into the text table has been built
// for; charCount is the number of characters of that text.
//
// Each run of the line is resolved on its own. A line without runs is
// treated as a single run, degenerate if all of its glyphs share a cluster.
func Resolve(line lines.Line, table *remap.IndexTable, charCount int) *Spans {
	if charCount < 0 {
		charCount = 0
	}
	s := &Spans{
		clusters:  treemap.NewWithIntComparator(),
		lineStart: clamp(line.Start, 0, charCount),
	}
	lineEnd := clamp(line.End, s.lineStart, charCount)
	n := len(line.Glyphs)
	if n == 0 {
		return s
	}
	s.glyphs = make([]Span, n)
	runs := line.Runs
	if len(runs) == 0 {
		runs = []lines.Run{{
			GlyphEnd:   n,
			Start:      s.lineStart,
			End:        lineEnd,
			Degenerate: singleCluster(line.Glyphs),
		}}
	}
	for _, run := range runs {
		g0 := clamp(run.GlyphStart, 0, n)
		g1 := clamp(run.GlyphEnd, g0, n)
		start := clamp(run.Start, s.lineStart, lineEnd)
		end := clamp(run.End, start, lineEnd)
		if run.Degenerate && g1-g0 > 1 {
			s.degenerate = true
			s.proportional(g0, g1, start, end)
			continue
		}
		s.byCluster(line.Glyphs, g0, g1, table, charCount, end)
	}
	return s
}

// byCluster resolves glyphs [g0, g1) by their cluster values. Each cluster
// extends to the start of the next one of the run, the last one to end.
func (s *Spans) byCluster(glyphs []glyphing.ShapedGlyph, g0, g1 int,
	table *remap.IndexTable, charCount, end int) {
	//
	run := treemap.NewWithIntComparator()
	for _, g := range glyphs[g0:g1] {
		if _, found := run.Get(g.Cluster); !found {
			run.Put(g.Cluster, Span{Start: charAt(table, g.Cluster, charCount)})
		}
	}
	keys := run.Keys()
	for i, k := range keys {
		v, _ := run.Get(k)
		span := v.(Span)
		span.End = end
		if i+1 < len(keys) {
			next, _ := run.Get(keys[i+1])
			span.End = next.(Span).Start
		}
		if span.End > end {
			span.End = end
		}
		if span.End < span.Start+1 {
			span.End = span.Start + 1
		}
		s.clusters.Put(k, span)
	}
	for i := g0; i < g1; i++ {
		v, _ := run.Get(glyphs[i].Cluster)
		s.glyphs[i] = v.(Span)
	}
}

// proportional maps glyph g0+i of glyphs [g0, g1) to character
// start + round(i/(n-1) × (count-1)).
func (s *Spans) proportional(g0, g1, start, end int) {
	n := g1 - g0
	for i := 0; i < n; i++ {
		from := lines.ProportionalChar(i, n, start, end)
		to := end
		if i+1 < n {
			to = lines.ProportionalChar(i+1, n, start, end)
		}
		if to < from+1 {
			to = from + 1
		}
		s.glyphs[g0+i] = Span{Start: from, End: to}
	}
}

func singleCluster(glyphs []glyphing.ShapedGlyph) bool {
	if len(glyphs) < 2 {
		return false
	}
	for _, g := range glyphs[1:] {
		if g.Cluster != glyphs[0].Cluster {
			return false
		}
	}
	return true
}

func charAt(table *remap.IndexTable, cluster, charCount int) int {
	c := cluster
	if table != nil {
		c = table.CharAt(cluster)
	}
	if c >= charCount && charCount > 0 {
		c = charCount - 1
	}
	return clamp(c, 0, charCount)
}

// Degenerate is true if the cluster values of a run of the line have been
// unusable and its characters are distributed proportionally.
func (s *Spans) Degenerate() bool {
	return s.degenerate
}

// Len returns the number of glyphs.
func (s *Spans) Len() int {
	return len(s.glyphs)
}

// SpanOf returns the character span of a glyph. Glyph indices out of range
// are clamped.
func (s *Spans) SpanOf(glyph int) (start, end int) {
	if len(s.glyphs) == 0 {
		return s.lineStart, s.lineStart
	}
	sp := s.glyphs[clamp(glyph, 0, len(s.glyphs)-1)]
	return sp.Start, sp.End
}

// CharOf returns the first character of a glyph's span.
func (s *Spans) CharOf(glyph int) int {
	start, _ := s.SpanOf(glyph)
	return start
}

// ClusterSpan returns the character span for a cluster value of the line.
// It is not available for degenerate runs.
func (s *Spans) ClusterSpan(cluster int) (Span, bool) {
	v, found := s.clusters.Get(cluster)
	if !found {
		return Span{}, false
	}
	return v.(Span), true
}

// Clusters returns the distinct cluster values of the line in ascending
// order.
func (s *Spans) Clusters() []int {
	keys := s.clusters.Keys()
	cc := make([]int, len(keys))
	for i, k := range keys {
		cc[i] = k.(int)
	}
	return cc
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
