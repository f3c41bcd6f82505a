package cluster

import (
	"testing"

	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/glyphing/monospace"
	"github.com/npillmayer/devatext/engine/lines"
	"github.com/npillmayer/devatext/engine/remap"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(start, end int, clusters ...int) lines.Line {
	l := lines.Line{Start: start, End: end}
	for _, c := range clusters {
		l.Glyphs = append(l.Glyphs, glyphing.ShapedGlyph{GID: 1, Cluster: c, XAdvance: 10})
	}
	return l
}

func spans(s *Spans) []Span {
	var sp []Span
	for i := 0; i < s.Len(); i++ {
		start, end := s.SpanOf(i)
		sp = append(sp, Span{start, end})
	}
	return sp
}

func TestResolveByteClusters(t *testing.T) {
	text := "a\u00E4b" // clusters 0, 1, 3
	tab := remap.NewIndexTable(text)
	s := Resolve(line(0, 3, 0, 1, 3), tab, 3)
	assert.False(t, s.Degenerate())
	assert.Equal(t, []Span{{0, 1}, {1, 2}, {2, 3}}, spans(s))
	assert.Equal(t, []int{0, 1, 3}, s.Clusters())
}

func TestResolveMultiGlyphCluster(t *testing.T) {
	// one character decomposed into two glyphs, followed by a ligature of two
	tab := remap.NewIndexTable("abcd")
	s := Resolve(line(0, 4, 0, 0, 1), tab, 4)
	assert.Equal(t, []Span{{0, 1}, {0, 1}, {1, 4}}, spans(s))
	sp, ok := s.ClusterSpan(1)
	require.True(t, ok)
	assert.Equal(t, 3, sp.Len())
	_, ok = s.ClusterSpan(2)
	assert.False(t, ok)
}

func TestResolveReorderedClusters(t *testing.T) {
	// a pre-base matra is displayed before the consonant it follows
	tab := remap.NewIndexTable("abc")
	s := Resolve(line(0, 3, 1, 0, 2), tab, 3)
	assert.Equal(t, []Span{{1, 2}, {0, 1}, {2, 3}}, spans(s))
}

func TestResolveLineRange(t *testing.T) {
	// second line of "ab cd": clusters absolute, last cluster ends at line end
	tab := remap.NewIndexTable("ab cd efgh")
	s := Resolve(line(3, 5, 3, 4), tab, 10)
	assert.Equal(t, []Span{{3, 4}, {4, 5}}, spans(s))
	s = Resolve(line(6, 10, 6, 8), tab, 10)
	assert.Equal(t, []Span{{6, 8}, {8, 10}}, spans(s))
}

func TestDegenerateClusters(t *testing.T) {
	tab := remap.NewIndexTable("abcdefgh")
	s := Resolve(line(0, 8, 0, 0, 0, 0), tab, 8)
	require.True(t, s.Degenerate())
	assert.Equal(t, []Span{{0, 2}, {2, 5}, {5, 7}, {7, 8}}, spans(s))
	covered := make([]bool, 8)
	for _, sp := range spans(s) {
		for c := sp.Start; c < sp.End; c++ {
			covered[c] = true
		}
	}
	for c, ok := range covered {
		assert.True(t, ok, "character %d is attributed to a glyph", c)
	}
	assert.Equal(t, 7, s.CharOf(3))
	// more glyphs than characters
	s = Resolve(line(0, 2, 0, 0, 0), tab, 8)
	assert.Equal(t, []Span{{0, 1}, {1, 2}, {1, 2}}, spans(s))
	// a single glyph is never degenerate
	s = Resolve(line(0, 8, 0), tab, 8)
	assert.False(t, s.Degenerate())
	assert.Equal(t, []Span{{0, 8}}, spans(s))
}

func TestDegenerateRun(t *testing.T) {
	// "ab cde", the second token shaped without usable clusters
	tab := remap.NewIndexTable("ab cde")
	l := line(0, 6, 0, 1, 2, 2, 2, 2)
	l.Runs = []lines.Run{
		{GlyphStart: 0, GlyphEnd: 2, Start: 0, End: 2},
		{GlyphStart: 2, GlyphEnd: 6, Start: 2, End: 6, Degenerate: true},
	}
	s := Resolve(l, tab, 6)
	require.True(t, s.Degenerate())
	assert.Equal(t, []Span{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}}, spans(s))
	assert.Equal(t, []int{0, 1}, s.Clusters())
	_, ok := s.ClusterSpan(2)
	assert.False(t, ok)
}

// clusterless shapes like a monospace shaper, but reports cluster 0 for
// every glyph.
type clusterless struct {
	*monospace.MSShaper
}

func (c clusterless) Shape(text string, p glyphing.Params, buf []glyphing.ShapedGlyph) (int, error) {
	n, err := c.MSShaper.Shape(text, p, buf)
	for i := 0; i < n && i < len(buf); i++ {
		buf[i].Cluster = 0
	}
	return n, err
}

func TestDegenerateWrappedTokens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	text := "abc def"
	b := lines.NewBreaker(clusterless{monospace.Shaper(1, 1, nil)}, glyphing.Params{}, nil)
	ll, err := b.Layout(text, 100)
	require.NoError(t, err)
	require.Len(t, ll, 1)
	s := Resolve(ll[0], remap.NewIndexTable(text), 7)
	assert.True(t, s.Degenerate())
	assert.Equal(t, []Span{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {6, 7}}, spans(s))
	//
	ll, err = b.Layout(text, 4)
	require.NoError(t, err)
	require.Len(t, ll, 2)
	s = Resolve(ll[1], remap.NewIndexTable(text), 7)
	assert.True(t, s.Degenerate())
	assert.Equal(t, []Span{{4, 5}, {5, 6}, {6, 7}}, spans(s))
}

func TestResolveClamps(t *testing.T) {
	tab := remap.NewIndexTable("ab")
	s := Resolve(line(0, 2, 0, 7), tab, 2)
	assert.Equal(t, []Span{{0, 1}, {1, 2}}, spans(s))
	start, end := s.SpanOf(-4)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)
	assert.Equal(t, 1, s.CharOf(99))
	//
	s = Resolve(lines.Line{Start: 5, End: 9}, tab, 2)
	assert.Equal(t, 0, s.Len())
	start, end = s.SpanOf(0)
	assert.Equal(t, 2, start)
	assert.Equal(t, 2, end)
	//
	s = Resolve(line(0, 1, 0), nil, 0)
	assert.Equal(t, []Span{{0, 1}}, spans(s))
}
