package lines

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/devatext/core"
	"github.com/npillmayer/devatext/engine/glyphing"
	"github.com/npillmayer/devatext/engine/glyphing/monospace"
	"github.com/npillmayer/devatext/engine/markup"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newBreaker() *Breaker {
	return NewBreaker(monospace.Shaper(1, 1, nil), glyphing.Params{}, nil)
}

func clusters(l Line) []int {
	var c []int
	for _, g := range l.Glyphs {
		c = append(c, g.Cluster)
	}
	return c
}

func TestWrapGreedy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := newBreaker()
	lines, err := b.Layout("ab cd efgh", 5)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 5.0, lines[0].Width)
	assert.Equal(t, 0, lines[0].Start)
	assert.Equal(t, 5, lines[0].End)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, clusters(lines[0]))
	assert.Equal(t, 4.0, lines[1].Width)
	assert.Equal(t, 6, lines[1].Start)
	assert.Equal(t, 10, lines[1].End)
	assert.Equal(t, []int{6, 7, 8, 9}, clusters(lines[1]), "leading blank is stripped at wrap")
	for _, l := range lines {
		assert.LessOrEqual(t, l.Width, 5.0)
	}
}

func TestWrapDisabled(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := newBreaker()
	for _, w := range []float64{0, -1, math.Inf(1), math.NaN()} {
		lines, err := b.Layout("ab cd efgh", w)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 10.0, lines[0].Width)
	}
	b.SetWordWrap(false)
	lines, err := b.Layout("ab cd efgh", 5)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestParagraphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := newBreaker()
	lines, err := b.Layout("ab\r\n\rcd", math.Inf(1))
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, []int{0, 1}, clusters(lines[0]))
	assert.True(t, lines[1].IsEmpty())
	assert.Equal(t, 3, lines[1].Start)
	assert.Equal(t, 3, lines[1].End)
	assert.Equal(t, []int{4, 5}, clusters(lines[2]))
	assert.Equal(t, 2, lines[2].Paragraph)
	//
	lines, err = b.Layout("", 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].IsEmpty())
}

func TestScaledWidths(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := newBreaker()
	big := markup.StyledChar{Color: markup.DefaultStyle.Color, Scale: 2}
	b.SetStyles([]markup.StyledChar{markup.DefaultStyle, markup.DefaultStyle, markup.DefaultStyle, big, big})
	lines, err := b.Layout("ab cd", 5)
	require.NoError(t, err)
	require.Len(t, lines, 2, "enlarged word does not fit")
	assert.Equal(t, 2.0, lines[0].Width)
	assert.Equal(t, 4.0, lines[1].Width)
	assert.Equal(t, 3, lines[1].Start)
}

func TestBlankTokenAtWrap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := newBreaker()
	lines, err := b.Layout("ab  cd", 2)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, []int{0, 1}, clusters(lines[0]))
	assert.Equal(t, []int{3, 4, 5}, clusters(lines[1]))
	assert.Equal(t, 3, lines[1].Start)
	assert.Equal(t, 6, lines[1].End)
}

func TestCacheReuseAtOtherOffsets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := newBreaker()
	lines, err := b.Layout("ab ab ab", 100)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, clusters(lines[0]))
	assert.Equal(t, 2, b.Cache().Len())
	hits, misses := b.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
	tok, ok := b.Cache().Get(" ab")
	require.True(t, ok)
	assert.Equal(t, 0, tok.Glyphs[0].Cluster, "cached tokens carry no offsets")
}

func TestCacheSurvivesTextChanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := newBreaker()
	_, err := b.Layout("ab cd", 100)
	require.NoError(t, err)
	_, misses := b.Cache().Stats()
	assert.Equal(t, 2, misses)
	lines, err := b.Layout("xy cd", 100)
	require.NoError(t, err)
	hits, misses := b.Cache().Stats()
	assert.Equal(t, 1, hits, "the token of the former text is still cached")
	assert.Equal(t, 3, misses)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, clusters(lines[0]))
}

func TestTokenCacheEviction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	c := NewTokenCache(4)
	for _, k := range []string{"k0", "k1", "k2", "k3"} {
		c.Set(k, Token{})
	}
	_, ok := c.Get("k0")
	require.True(t, ok)
	c.Set("k4", Token{})
	assert.Equal(t, 3, c.Len())
	for k, present := range map[string]bool{"k0": true, "k1": false, "k2": false, "k3": true, "k4": true} {
		_, ok := c.Get(k)
		assert.Equal(t, present, ok, k)
	}
}

func TestTokenCacheFingerprint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	c := NewTokenCache(0)
	fp := Fingerprint{Font: "a", Language: language.Hindi}
	assert.True(t, c.SetFingerprint(fp))
	c.Set("x", Token{Width: 3})
	assert.False(t, c.SetFingerprint(fp))
	assert.Equal(t, 1, c.Len())
	fp.Script = language.MustParseScript("Deva")
	assert.True(t, c.SetFingerprint(fp))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, fp, c.Fingerprint())
	c.Set("x", Token{})
	c.Invalidate()
	assert.Equal(t, 0, c.Len())
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

func TestDegenerateRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := NewBreaker(clusterless{monospace.Shaper(1, 1, nil)}, glyphing.Params{}, nil)
	big := markup.StyledChar{Color: markup.DefaultStyle.Color, Scale: 2}
	b.SetStyles([]markup.StyledChar{markup.DefaultStyle, markup.DefaultStyle, markup.DefaultStyle,
		markup.DefaultStyle, big})
	lines, err := b.Layout("ab cd", 100)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, []int{0, 0, 2, 2, 2}, clusters(lines[0]))
	assert.Equal(t, []Run{
		{GlyphStart: 0, GlyphEnd: 2, Start: 0, End: 2, Degenerate: true},
		{GlyphStart: 2, GlyphEnd: 5, Start: 2, End: 5, Degenerate: true},
	}, lines[0].Runs)
	assert.Equal(t, 6.0, lines[0].Width, "the last glyph displays the enlarged character")
	//
	lines, err = newBreaker().Layout("ab cd", 100)
	require.NoError(t, err)
	require.Len(t, lines[0].Runs, 2)
	assert.False(t, lines[0].Runs[1].Degenerate)
}

func TestProportionalChar(t *testing.T) {
	assert.Equal(t, 3, ProportionalChar(0, 4, 3, 7))
	assert.Equal(t, 6, ProportionalChar(3, 4, 3, 7))
	assert.Equal(t, 4, ProportionalChar(1, 3, 2, 6))
	assert.Equal(t, 2, ProportionalChar(2, 3, 2, 3))
	assert.Equal(t, 5, ProportionalChar(0, 1, 5, 9))
}

type failingShaper struct{}

func (failingShaper) Shape(string, glyphing.Params, []glyphing.ShapedGlyph) (int, error) {
	return 0, errors.New("engine gone")
}
func (failingShaper) UnitsPerEm() int { return 1000 }
func (failingShaper) Close() error    { return nil }

func TestShapingErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.lines")
	defer teardown()
	//
	b := NewBreaker(failingShaper{}, glyphing.Params{}, nil)
	_, err := b.Layout("ab cd", 5)
	assert.Equal(t, core.EFALLBACK, core.Code(err))
	_, err = b.Layout("ab", 0)
	assert.Equal(t, core.EFALLBACK, core.Code(err))
}

func TestMaxWidth(t *testing.T) {
	assert.Equal(t, 7.0, MaxWidth([]Line{{Width: 3}, {Width: 7}, {}}))
	assert.Equal(t, "a\nb\nc", NormalizeLineEndings("a\r\nb\rc"))
}
